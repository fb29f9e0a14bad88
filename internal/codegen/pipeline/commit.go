package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/Alia5/rsbridge/internal/codegen/fault"
	"github.com/Alia5/rsbridge/internal/codegen/formatter"
	"github.com/Alia5/rsbridge/internal/config"
)

// committer owns every write to the destination.
//
// By default the destination is written twice: first with the reference
// document (the header bridge reads it from there), then with the final
// document. A reader in between sees the reference document.
//
// In atomic mode both documents go to temporary siblings of the destination
// and the formatted final document is renamed over it, so the destination
// only ever holds its previous content or the finished output.
type committer struct {
	dst    string
	atomic bool
	temps  []string
}

func newCommitter(cfg config.Config) *committer {
	return &committer{dst: cfg.Dst, atomic: cfg.Atomic}
}

// writeReference writes the reference document and returns the path the
// header bridge should read.
func (c *committer) writeReference(doc []byte) (string, error) {
	if !c.atomic {
		if err := os.WriteFile(c.dst, doc, 0o644); err != nil {
			return "", fault.IO(fault.StageReference, c.dst, err, "write reference document")
		}
		return c.dst, nil
	}
	path, err := c.writeTemp("ref-*.rs", doc)
	if err != nil {
		return "", fault.IO(fault.StageReference, c.dst, err, "write reference document")
	}
	return path, nil
}

// commit writes the final document and, when fmtr is not nil, formats it.
func (c *committer) commit(doc []byte, fmtr formatter.Formatter) error {
	if !c.atomic {
		if err := os.WriteFile(c.dst, doc, 0o644); err != nil {
			return fault.IO(fault.StageCommit, c.dst, err, "write document")
		}
		return format(fmtr, c.dst)
	}

	tmp, err := c.writeTemp("*.go", doc)
	if err != nil {
		return fault.IO(fault.StageCommit, c.dst, err, "write document")
	}
	if err := format(fmtr, tmp); err != nil {
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return fault.IO(fault.StageCommit, tmp, err, "set permissions")
	}
	if err := os.Rename(tmp, c.dst); err != nil {
		return fault.IO(fault.StageCommit, c.dst, err, "replace destination")
	}
	return nil
}

// writeTemp writes data to a new file next to the destination. The pattern
// keeps the suffix so the formatter still treats the file as Go source.
func (c *committer) writeTemp(pattern string, data []byte) (string, error) {
	base := strings.TrimSuffix(filepath.Base(c.dst), ".go")
	f, err := os.CreateTemp(filepath.Dir(c.dst), base+".rsbridge-"+pattern)
	if err != nil {
		return "", err
	}
	c.temps = append(c.temps, f.Name())
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// cleanup removes leftover temporaries. A renamed temporary no longer exists
// under its old name, so removing it is a no-op.
func (c *committer) cleanup() {
	for _, p := range c.temps {
		_ = os.Remove(p)
	}
}

func format(fmtr formatter.Formatter, path string) error {
	if fmtr == nil {
		return nil
	}
	err := fmtr.Format(path)
	if err == nil {
		return nil
	}
	var f *fault.Error
	if errors.As(err, &f) {
		return err
	}
	return fault.Formatter(path, 0, "", err)
}
