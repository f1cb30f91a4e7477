package util

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"
)

const avatarMaxSide = 512

// ResizeAvatar 将头像图片等比缩放到 512px 以内并重新编码为 JPEG
func ResizeAvatar(reader io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(reader, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("图片解码失败: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > avatarMaxSide || bounds.Dy() > avatarMaxSide {
		img = imaging.Fit(img, avatarMaxSide, avatarMaxSide, imaging.Lanczos)
	}

	buf := &bytes.Buffer{}
	if err = imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("图片编码失败: %w", err)
	}
	return buf, nil
}
