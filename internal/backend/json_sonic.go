//go:build sonic

package backend

import "github.com/bytedance/sonic"

var jsonUnmarshal = sonic.Unmarshal

func jsonMarshalIndent(v any) ([]byte, error) {
	return sonic.ConfigDefault.MarshalIndent(v, "", "  ")
}
