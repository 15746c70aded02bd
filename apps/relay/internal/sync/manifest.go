package sync

import (
	"crypto/md5"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestPath and HashPath implement spec.md §6's on-disk layout:
//
//	<dataDir>/<targetType>-<targetUuid>.json
//	<dataDir>/<targetType>-<targetUuid>.json.content-md5
func ManifestPath(dataDir, targetType, uuid string) string {
	return filepath.Join(dataDir, fmt.Sprintf("%s-%s.json", targetType, uuid))
}

func HashPath(dataDir, targetType, uuid string) string {
	return ManifestPath(dataDir, targetType, uuid) + ".content-md5"
}

// ContentMD5 is the base64 MD5 spec.md §4.E calls the agent's ETag.
func ContentMD5(body []byte) string {
	sum := md5.Sum(body)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// readCachedHash returns the hash currently on disk, or "" if no manifest
// has been written yet for this target.
func readCachedHash(dataDir, targetType, uuid string) string {
	b, err := os.ReadFile(HashPath(dataDir, targetType, uuid))
	if err != nil {
		return ""
	}
	return string(b)
}

// writeManifest atomically rewrites both the manifest and its hash file,
// matching property P5: the hash on disk is never observed out of sync
// with the body, because both files are written via temp-file-then-rename
// and the hash is computed before either write begins.
func writeManifest(dataDir, targetType, uuid string, body []byte) error {
	hash := ContentMD5(body)

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	if err := atomicWrite(ManifestPath(dataDir, targetType, uuid), body); err != nil {
		return err
	}
	if err := atomicWrite(HashPath(dataDir, targetType, uuid), []byte(hash)); err != nil {
		return err
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
