package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

// Keys holds the v4.local symmetric key. Session cookies are read and written
// by the same service, so there is no public mode.
type Keys struct {
	Symmetric *paseto.V4SymmetricKey
}

func LoadKeys(symmetricHex string) (Keys, error) {
	hex := strings.TrimSpace(symmetricHex)
	if hex == "" {
		return Keys{}, ErrConfig{Msg: "symmetric key hex is required"}
	}
	k, err := paseto.V4SymmetricKeyFromHex(hex)
	if err != nil {
		return Keys{}, ErrConfig{Msg: "invalid symmetric key hex: " + err.Error()}
	}
	return Keys{Symmetric: &k}, nil
}

func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Symmetric: &k}
}
