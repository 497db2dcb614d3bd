//go:build debug

package sqldb

import "log"

func (c *Conn) trace(op string, query string, args []any) {
	log.Printf("[DEBUG][sqldb][%s] %s: %s args=%d", c.dbType, op, query, len(args))
}
