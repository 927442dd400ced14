package immich

import (
	"encoding/json"
	"fmt"
)

// ServerVersion is the semantic version reported by the server-info endpoint.
type ServerVersion struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v ServerVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Capability identifies the asset retrieval dialect a server supports.
type Capability int

const (
	// CapabilityLegacy marks servers too old for metadata search (<= 1.105).
	CapabilityLegacy Capability = iota
	// CapabilityMetadataSearch marks servers with the /search/metadata endpoint.
	CapabilityMetadataSearch
)

func (c Capability) String() string {
	switch c {
	case CapabilityLegacy:
		return "legacy"
	case CapabilityMetadataSearch:
		return "metadata_search"
	default:
		return ""
	}
}

// Negotiate selects the retrieval dialect for a probed server version.
func Negotiate(v ServerVersion) Capability {
	if v.Major == 1 && v.Minor <= 105 {
		return CapabilityLegacy
	}
	return CapabilityMetadataSearch
}

// ExifInfo carries the subset of EXIF metadata the classifier inspects.
//
// ExposureTime stays a [json.RawMessage] so that an explicit null can be told
// apart from an absent key; both decode to nil through a typed pointer.
type ExifInfo struct {
	ExposureTime json.RawMessage `json:"exposureTime,omitempty"`
}

// Asset represents a single image record on the server.
type Asset struct {
	ID       string    `json:"id"`
	ExifInfo *ExifInfo `json:"exifInfo,omitempty"`
}

// Library represents an Immich library, used only to scope asset retrieval.
type Library struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImportPaths []string `json:"importPaths"`
}

// Album represents an Immich album. Membership is not eagerly fetched.
type Album struct {
	ID   string `json:"id"`
	Name string `json:"albumName"`
}

// BulkIDResult is the per-asset outcome of a bulk album-membership call.
type BulkIDResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkErrorDuplicate is the failure reason the server reports for an asset
// that is already a member of the album. Expected on repeat runs, not an error.
const BulkErrorDuplicate = "duplicate"
