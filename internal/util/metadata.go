package util

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/inscription-c/custody/constants"
	"github.com/nareix/joy4/av"
	"github.com/nareix/joy4/av/avutil"
	"github.com/nareix/joy4/format"
)

func init() {
	format.RegisterAll()
}

// ContentTypeForPath returns the content type recorded for a file by its
// extension. mp4 files must carry an h264 video stream.
func ContentTypeForPath(path string) (constants.ContentType, error) {
	ext := constants.Extension(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")))
	if ext == constants.ExtensionMp4 {
		ok, err := CheckMp4Codec(path)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New("mp4 file codec must be h264")
		}
	}
	contentType, ok := constants.Medias[ext]
	if !ok {
		return "", fmt.Errorf("unsupported file extension for `%s`", ext)
	}
	return contentType, nil
}

// CheckMp4Codec reports whether the first stream of the file is h264 video.
func CheckMp4Codec(path string) (bool, error) {
	file, err := avutil.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	streams, err := file.Streams()
	if err != nil {
		return false, err
	}
	for _, stream := range streams {
		if _, ok := stream.(av.VideoCodecData); !ok {
			return false, nil
		}
		return stream.Type() == av.H264, nil
	}
	return false, nil
}
