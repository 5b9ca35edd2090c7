package cli

import (
	"github.com/alexanderramin/portfolio/internal/effort"
	"github.com/spf13/pflag"
)

// unitFlag parses effort unit names at flag time so a typo fails before
// any service call.
type unitFlag struct {
	unit effort.Unit
}

var _ pflag.Value = (*unitFlag)(nil)

func newUnitFlag(def effort.Unit) unitFlag { return unitFlag{unit: def} }

func (f *unitFlag) String() string { return string(f.unit) }

func (f *unitFlag) Set(s string) error {
	u, err := effort.ParseUnit(s)
	if err != nil {
		return err
	}
	f.unit = u
	return nil
}

func (f *unitFlag) Type() string { return "unit" }

// addUnitFlag registers --unit on fs; an unset flag means weeks.
func addUnitFlag(fs *pflag.FlagSet, f *unitFlag, usage string) {
	fs.Var(f, "unit", usage)
}
