//go:build !debug

package sqldb

func (c *Conn) trace(string, string, []any) {}
