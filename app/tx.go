package app

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/iov-one/autoshare"
	"github.com/iov-one/autoshare/codec"
	"github.com/iov-one/autoshare/crypto"
	"github.com/iov-one/autoshare/errors"
	"github.com/iov-one/autoshare/x/auth"
)

// Tx is a transaction as submitted by clients. The JSON form carries the
// message path so that the message can be decoded without knowing its type
// upfront:
//
//   {"path": "group/create", "msg": {...}, "signatures": [...]}
type Tx struct {
	Msg        autoshare.Msg
	Signatures []*auth.Signature
}

var _ auth.SignedTx = (*Tx)(nil)

type wireTx struct {
	Path       string            `json:"path"`
	Msg        json.RawMessage   `json:"msg"`
	Signatures []*auth.Signature `json:"signatures,omitempty"`
}

// GetMsg returns the message of the transaction.
func (tx *Tx) GetMsg() (autoshare.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	return tx.Msg, nil
}

// GetSignatures returns all signatures attached to the transaction.
func (tx *Tx) GetSignatures() []*auth.Signature {
	return tx.Signatures
}

// GetSignBytes returns the deterministic encoding of the message together
// with its path. Signatures are not part of it.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	doc := struct {
		Path string        `cbor:"path"`
		Msg  autoshare.Msg `cbor:"msg"`
	}{Path: msg.Path(), Msg: msg}
	return codec.Marshal(doc)
}

// Sign appends a signature of key for given chain and sequence.
func (tx *Tx) Sign(key crypto.PrivateKey, chainID string, seq int64) error {
	sig, err := auth.SignTx(key, tx, chainID, seq)
	if err != nil {
		return err
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}

func (tx *Tx) MarshalJSON() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrType, "encode %T: %s", msg, err)
	}
	return json.Marshal(wireTx{Path: msg.Path(), Msg: raw, Signatures: tx.Signatures})
}

// TxDecoder turns the JSON form of a transaction back into a Tx. Only
// messages of registered types can be decoded.
type TxDecoder struct {
	msgs map[string]reflect.Type
}

// NewTxDecoder returns a decoder that knows given messages.
func NewTxDecoder(msgs ...autoshare.Msg) *TxDecoder {
	d := &TxDecoder{msgs: make(map[string]reflect.Type)}
	for _, m := range msgs {
		d.Register(m)
	}
	return d
}

// Register adds a message type. The message must be a pointer to a struct.
// It panics if the path of the message is already taken.
func (d *TxDecoder) Register(msg autoshare.Msg) {
	t := reflect.TypeOf(msg)
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("message %T must be a pointer to a struct", msg))
	}
	path := msg.Path()
	if _, ok := d.msgs[path]; ok {
		panic(fmt.Sprintf("message path %q already registered", path))
	}
	d.msgs[path] = t.Elem()
}

// Decode parses the JSON form of a transaction. The message is not
// validated, that is done by its handler.
func (d *TxDecoder) Decode(raw []byte) (*Tx, error) {
	var w wireTx
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "transaction: %s", err)
	}
	t, ok := d.msgs[w.Path]
	if !ok {
		return nil, errors.Wrap(ErrNoSuchPath, w.Path)
	}
	if len(w.Msg) == 0 {
		return nil, errors.Wrap(errors.ErrMsg, "no message")
	}
	msg := reflect.New(t).Interface().(autoshare.Msg)
	if err := json.Unmarshal(w.Msg, msg); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "message: %s", err)
	}
	return &Tx{Msg: msg, Signatures: w.Signatures}, nil
}
