package uds

import (
	"context"
	"io"
)

// CmdHnd - admin socket command handler.
// An error returned by Fn is written back to the client.
type CmdHnd struct {
	Desc  string
	Usage string
	Fn    func(ctx context.Context, args []string, w io.Writer) error
}
