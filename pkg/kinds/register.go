package kinds

import (
	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/requirement"
)

// Register adds every kind in this package to reg. A real deployment is
// free to register only a subset, or additional kinds of its own — the
// catalog's universe of kinds is fixed per binary, not per package.
func Register(reg *catalog.Registry) {
	reg.Register(DirectoryKind, func() requirement.Requirement { return &Directory{} })
	reg.Register(FileKind, func() requirement.Requirement { return &FileWithContents{} })
	reg.Register(CommandKind, func() requirement.Requirement { return &Command{} })
	reg.Register(SystemGroupKind, func() requirement.Requirement { return &SystemGroup{} })
	reg.Register(SystemUserKind, func() requirement.Requirement { return &SystemUser{} })
	reg.Register(SystemdUnitKind, func() requirement.Requirement { return &SystemdUnit{} })
}
