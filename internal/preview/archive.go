package preview

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// Archive writes every present artifact, uncomposed, as "<name>.<ext>" into a
// zip container.
func Archive(w io.Writer, set ArtifactSet) error {
	zw := zip.NewWriter(w)
	for _, e := range set.Entries() {
		f, err := zw.Create(e.FileName())
		if err != nil {
			return fmt.Errorf("creating %s: %w", e.FileName(), err)
		}
		if _, err := io.WriteString(f, e.Artifact.Content); err != nil {
			return fmt.Errorf("writing %s: %w", e.FileName(), err)
		}
	}
	return zw.Close()
}

// ArchiveBytes is Archive into memory.
func ArchiveBytes(set ArtifactSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Archive(&buf, set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
