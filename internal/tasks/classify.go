package tasks

import (
	"bytes"

	"github.com/desertthunder/immich-screens/internal/immich"
)

var jsonNull = []byte("null")

// IsScreenshot reports whether an asset is classified as a screenshot.
//
// An asset matches when its EXIF record carries an exposureTime key whose
// value is explicitly null; a camera photo always records an exposure time.
// An absent exposureTime key is not a match. Assets without any EXIF record
// match only when includeExifless is set.
//
// Pure and deterministic: same asset and flag always yield the same result.
func IsScreenshot(asset immich.Asset, includeExifless bool) bool {
	if asset.ExifInfo == nil {
		return includeExifless
	}
	if asset.ExifInfo.ExposureTime == nil {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(asset.ExifInfo.ExposureTime), jsonNull)
}
