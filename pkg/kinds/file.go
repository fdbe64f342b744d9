package kinds

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// FileKind is the catalog tag for FileWithContents.
const FileKind = "file"

// FileWithContents requires a regular file at Path to hold exactly
// Contents with permission Mode. Both Create and Modify write the full
// contents unconditionally: the cost of an unnecessary write is cheap
// compared to the content-hash comparison Verify performs, which is where
// this kind actually decides whether anything needs to change.
type FileWithContents struct {
	Path     string `json:"path"`
	Contents []byte `json:"contents"`
	Mode     uint32 `json:"mode"`
}

func (f *FileWithContents) Kind() string { return FileKind }

func (f *FileWithContents) Create(ctx context.Context, h host.Host) error {
	return h.WriteFile(ctx, f.Path, f.Contents, f.Mode)
}

func (f *FileWithContents) Modify(ctx context.Context, h host.Host) error {
	return h.WriteFile(ctx, f.Path, f.Contents, f.Mode)
}

func (f *FileWithContents) Delete(ctx context.Context, h host.Host) error {
	return h.RemoveFile(ctx, f.Path)
}

func (f *FileWithContents) DeletePreExisting(ctx context.Context, h host.Host) error {
	return nil
}

func (f *FileWithContents) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	return h.PathExists(ctx, f.Path)
}

// Verify compares the SHA-256 of the file's current contents against the
// SHA-256 of the requirement's own Contents, the way the teacher's content
// hash comparisons work elsewhere in this engine — stands in for the
// content hash the file kind this is grounded on uses to the same end.
func (f *FileWithContents) Verify(ctx context.Context, h host.Host) error {
	exists, err := h.PathExists(ctx, f.Path)
	if err != nil {
		return err
	}
	if !exists {
		return &requirement.VerifyError{Reason: "file does not exist"}
	}
	data, err := h.ReadFile(ctx, f.Path)
	if err != nil {
		return err
	}
	want := sha256.Sum256(f.Contents)
	got := sha256.Sum256(data)
	if !bytes.Equal(want[:], got[:]) {
		return &requirement.VerifyError{Reason: "content hash mismatch: want " + hex.EncodeToString(want[:]) + " got " + hex.EncodeToString(got[:])}
	}
	return nil
}

func (f *FileWithContents) Affects(other requirement.Requirement) bool {
	o, ok := other.(*FileWithContents)
	return ok && o.Path == f.Path
}

func (f *FileWithContents) SupportsModifications() bool { return true }
func (f *FileWithContents) CanUndo() bool                { return true }
func (f *FileWithContents) MayPreExist() bool            { return false }
