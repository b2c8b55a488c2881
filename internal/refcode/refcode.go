package refcode

import (
	"errors"

	hashids "github.com/speps/go-hashids/v2"
)

var ErrInvalidCode = errors.New("invalid reference code")

// Codec turns numeric booking IDs into short opaque reference codes for
// receipts and push notifications, so raw sequence numbers never leak out.
type Codec struct {
	h *hashids.HashID
}

func New(salt string, minLength int) (*Codec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = minLength

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Codec{h: h}, nil
}

func (c *Codec) Encode(id int64) (string, error) {
	return c.h.EncodeInt64([]int64{id})
}

func (c *Codec) Decode(code string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrInvalidCode
	}
	return ids[0], nil
}
