package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// namespaceFile is the on-disk form of one FileStore namespace.
type namespaceFile map[string][]byte

// fileMode is used for every namespace file; they can hold key material.
const fileMode os.FileMode = 0o600

// loadNamespace reads the namespace document at path. A namespace that was
// never written loads as empty.
func loadNamespace(path string) (namespaceFile, error) {
	nf := namespaceFile{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nf, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(raw, &nf); err != nil {
		return nil, err
	}
	return nf, nil
}

// saveNamespace replaces the document at path. Readers see either the old
// or the new document: the bytes go to a synced sibling temp file which is
// then renamed over path.
func saveNamespace(path string, nf namespaceFile) error {
	raw, err := json.MarshalIndent(nf, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	defer func() { _ = os.Remove(name) }()

	err = tmp.Chmod(fileMode)
	if err == nil {
		_, err = tmp.Write(raw)
	}
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(name, path)
}

// dropNamespace deletes the document at path if there is one.
func dropNamespace(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
