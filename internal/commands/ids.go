package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

// parseIDs converts positional arguments into bookmark IDs. IDs may be
// separated by spaces or commas.
func parseIDs(args cli.Args) ([]int, error) {
	return parseIDList(args.Slice())
}

func parseIDList(values []string) ([]int, error) {
	var ids []int
	for _, arg := range values {
		for part := range strings.SplitSeq(arg, ",") {
			part = strings.TrimSpace(strings.TrimPrefix(part, "#"))
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid bookmark id %q", part)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one bookmark id is required")
	}
	return ids, nil
}
