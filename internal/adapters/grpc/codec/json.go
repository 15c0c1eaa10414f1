// Package codec は gRPC で利用する JSON コーデックを提供します。
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name は content-subtype として利用するコーデック名です。
const Name = "json"

// JSON は Go の構造体を JSON で直列化する gRPC コーデックです。
type JSON struct{}

var _ encoding.Codec = JSON{}

func init() {
	encoding.RegisterCodec(JSON{})
}

// Marshal は v を JSON に変換します。
func (JSON) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal %T: %w", v, err)
	}
	return b, nil
}

// Unmarshal は JSON を v に復元します。
func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal %T: %w", v, err)
	}
	return nil
}

// Name はコーデック名を返します。
func (JSON) Name() string {
	return Name
}
