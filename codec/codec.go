/*
Package codec serializes models, configuration and events stored in the
ledger. Encoding is CBOR using Core Deterministic Encoding, so the same
logical data always produces identical bytes.
*/
package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/iov-one/autoshare/errors"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: cbor encoder: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		// Payloads decoded into interface{} must be usable with
		// encoding/json.
		DefaultMapType: reflect.TypeOf(map[string]interface{}(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: cbor decoder: " + err.Error())
	}
}

// Marshal encodes v using Core Deterministic Encoding.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := encMode.Marshal(v)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrType, "encode %T: %s", v, err)
	}
	return raw, nil
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v interface{}) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return errors.Wrapf(errors.ErrType, "decode %T: %s", v, err)
	}
	return nil
}

// RawMessage is a raw encoded value, used to delay decoding.
type RawMessage = cbor.RawMessage
