package store

import (
	"errors"

	hashids "github.com/speps/go-hashids/v2"
)

var ErrBadShareCode = errors.New("share code does not decode to a review")

// ShareCodec turns review ids into short opaque share codes for public
// review links. The salt must stay stable or existing links break.
type ShareCodec struct {
	h *hashids.HashID
}

func NewShareCodec(salt string) (*ShareCodec, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &ShareCodec{h: h}, nil
}

func (c *ShareCodec) Encode(reviewID int64) (string, error) {
	return c.h.EncodeInt64([]int64{reviewID})
}

func (c *ShareCodec) Decode(code string) (int64, error) {
	ids, err := c.h.DecodeInt64WithError(code)
	if err != nil || len(ids) != 1 {
		return 0, ErrBadShareCode
	}
	return ids[0], nil
}
