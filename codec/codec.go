package codec

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

func Decode[T any](bz []byte) (T, error) {
	comp := new(T)
	err := json.Unmarshal(bz, comp)
	if err != nil {
		return *comp, eris.Wrap(err, "")
	}
	return *comp, nil
}

func Encode(comp any) ([]byte, error) {
	bz, err := json.Marshal(comp)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

// DeepCopy produces a structural copy of a value by round-tripping it through
// the codec. It is the default clone behavior for components and event
// payloads that do not implement their own Clone hook.
func DeepCopy[T any](v T) (T, error) {
	bz, err := Encode(v)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](bz)
}
