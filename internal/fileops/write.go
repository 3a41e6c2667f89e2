package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// WriteFile stores data as dir/name, replacing any previous file of that
// name, and returns the path written. It creates dir if needed. The write
// goes through a temporary file and a rename so readers never see a partial
// file.
func WriteFile(dir, name string, data []byte) (string, error) {
	dstPath := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dstPath), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", filepath.Base(dstPath), err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", filepath.Base(dstPath), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dstPath); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", filepath.Base(dstPath), err)
	}
	return dstPath, nil
}

// Names hands out output file names, one owner per name.
type Names struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewNames() *Names {
	return &Names{owners: make(map[string]string)}
}

// Claim reserves name for owner and returns it. If a different owner already
// holds name, the first 8 hex chars of the sha256 of owner are appended to
// the stem instead, so the same owner always gets the same name.
func (n *Names) Claim(name, owner string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if holder, taken := n.owners[name]; taken && holder != owner {
		ext := filepath.Ext(name)
		stem := name[:len(name)-len(ext)]
		name = fmt.Sprintf("%s_%s%s", stem, contentHash([]byte(owner))[:8], ext)
	}
	n.owners[name] = owner
	return name
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
