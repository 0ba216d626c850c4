package keyword

import (
	_ "embed"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/pkg/errors"
)

//go:embed schema.cue
var overrideSchema string

// LoadOverridesFile reads a CUE keyword override file.
func LoadOverridesFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, errors.Wrapf(err, "reading keyword file %s", path)
	}
	return ParseOverrides(data, path)
}

// ParseOverrides compiles src, unifies it with the #Keywords schema and
// decodes the result. Unknown top-level sections fail; unknown enum names
// inside a section are left for NewSet to drop.
func ParseOverrides(src []byte, filename string) (Overrides, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(overrideSchema, cue.Filename("keywords_schema.cue"))
	if err := schema.Err(); err != nil {
		return Overrides{}, errors.Wrap(err, "compiling keyword schema")
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Overrides{}, errors.Wrapf(err, "compiling %s", filename)
	}

	unified := schema.LookupPath(cue.ParsePath("#Keywords")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Overrides{}, errors.Wrapf(err, "validating %s", filename)
	}

	var ov Overrides
	if err := unified.Decode(&ov); err != nil {
		return Overrides{}, errors.Wrapf(err, "decoding %s", filename)
	}
	return ov, nil
}
