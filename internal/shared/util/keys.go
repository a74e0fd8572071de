package util

import (
	"errors"
	"path"
	"strings"
)

var ErrInvalidKey = errors.New("invalid storage key")

// CleanKey normalises a slash-separated storage key and rejects traversal.
func CleanKey(key string) (string, error) {
	raw := strings.TrimSpace(key)
	if raw == "" || strings.Contains(raw, "\\") {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(raw, "/") {
		if seg == ".." {
			return "", ErrInvalidKey
		}
	}
	clean := strings.TrimLeft(path.Clean("/"+raw), "/")
	if clean == "" || clean == "." {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// ExtFromMime maps an accepted upload mime type to a file extension.
func ExtFromMime(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "application/pdf":
		return "pdf"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}

// ExtOfKey returns the extension of a storage key without the dot, or "bin".
func ExtOfKey(key string) string {
	ext := strings.TrimPrefix(path.Ext(key), ".")
	if ext == "" {
		return "bin"
	}
	return strings.ToLower(ext)
}

// UserPrefix is the storage namespace owned by a user.
func UserPrefix(userID string) string {
	return "users/" + userID + "/"
}

// ApplicationFileKey builds users/<uid>/applications/<app>/<fileType>.<ext>.
func ApplicationFileKey(userID, applicationID, fileType, ext string) string {
	return path.Join("users", userID, "applications", applicationID, fileType+"."+ext)
}

// LibraryDocumentKey builds users/<uid>/<kind>/<docID>.<ext>.
func LibraryDocumentKey(userID, kind, docID, ext string) string {
	return path.Join("users", userID, kind, docID+"."+ext)
}

// RegionQRKey builds regions/<regionID>.<ext>.
func RegionQRKey(regionID, ext string) string {
	return path.Join("regions", regionID+"."+ext)
}
