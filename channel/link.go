package channel

import (
	"strconv"
	"strings"
)

// LinkFormatter turns a shared list ID into its public URL.
type LinkFormatter interface {
	Format(listID int64) string
}

// BaseURLFormatter appends the decimal list ID to a fixed base URL.
type BaseURLFormatter struct {
	BaseURL string
}

func NewBaseURLFormatter(baseURL string) BaseURLFormatter {
	return BaseURLFormatter{BaseURL: strings.TrimSuffix(baseURL, "/") + "/"}
}

func (f BaseURLFormatter) Format(listID int64) string {
	return f.BaseURL + strconv.FormatInt(listID, 10)
}
