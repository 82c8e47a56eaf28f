package image

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// bundleMagic prefixes CBOR bundles so a stray file is rejected early.
var bundleMagic = []byte("EPCP")

func MarshalBundle(img Image) ([]byte, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	body, err := cbor.Marshal(img)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return append(append([]byte(nil), bundleMagic...), body...), nil
}

func UnmarshalBundle(data []byte) (Image, error) {
	body, ok := bytes.CutPrefix(data, bundleMagic)
	if !ok {
		return Image{}, fmt.Errorf("%w: missing bundle header", ErrUnknownFormat)
	}
	var img Image
	if err := cbor.Unmarshal(body, &img); err != nil {
		return Image{}, fmt.Errorf("decode bundle: %w", err)
	}
	if err := img.Validate(); err != nil {
		return Image{}, err
	}
	return img, nil
}
