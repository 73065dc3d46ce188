package logger

import (
	"log"
	"os"
)

// ProgressLogger logs the main steps of the line layout.
var ProgressLogger = log.New(os.Stdout, "linebox.progress: ", log.LstdFlags)

// WarningLogger emits a warning for each non fatal error, like unsupported CSS
// values, missing font faces or lines which can't hold an ellipsis.
var WarningLogger = log.New(os.Stdout, "linebox.warning: ", log.Lmsgprefix)
