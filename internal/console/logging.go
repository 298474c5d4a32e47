package console

import (
	"io"
	"path/filepath"

	"github.com/park285/termchess/internal/obslog"
)

// InitLogging installs the global logger from the environment with its
// console sink on w. Standard output carries the board, so w is normally
// os.Stderr.
func InitLogging(w io.Writer) error {
	o := obslog.OptionsFromEnv(filepath.Join("logs", "chess.log"))
	o.Stdout = w
	return obslog.Init(o)
}
