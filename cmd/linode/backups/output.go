// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"fmt"
	"io"
	"strings"

	"github.com/juju/ansiterm"
	"github.com/juju/errors"

	"github.com/linode/linode-backups/rpc/params"
)

func formatBackupsTabular(writer io.Writer, value interface{}) error {
	list, ok := value.(backupsList)
	if !ok {
		return errors.Errorf("expected value of type %T, got %T", list, value)
	}

	tw := ansiterm.NewTabWriter(writer, 0, 1, 1, ' ', 0)
	fmt.Fprintln(tw, "ID\tType\tStatus\tCreated\tFinished\tLabel")
	for _, b := range list.Backups {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Type, b.Status, b.Created, finished(b), b.Label)
	}
	if err := tw.Flush(); err != nil {
		return errors.Trace(err)
	}

	fmt.Fprintf(writer, "\nFetched %s of %s (%s backups)\n",
		pagesString(list.PagesFetched), countString(list.TotalPages), countString(list.TotalResults))
	return nil
}

func finished(b params.Backup) string {
	if b.Finished == nil {
		return "-"
	}
	return *b.Finished
}

func countString(n int) string {
	if n < 0 {
		return "?"
	}
	return fmt.Sprint(n)
}

func pagesString(pages []int) string {
	if len(pages) == 0 {
		return "no pages"
	}
	s := make([]string, len(pages))
	for i, p := range pages {
		s[i] = fmt.Sprint(p)
	}
	noun := "pages"
	if len(pages) == 1 {
		noun = "page"
	}
	return noun + " " + strings.Join(s, ",")
}
