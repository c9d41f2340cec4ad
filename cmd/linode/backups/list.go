// Copyright 2014 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package backups

import (
	"context"
	"sort"

	"github.com/juju/cmd/v3"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	linodecmd "github.com/linode/linode-backups/cmd"
	"github.com/linode/linode-backups/core/backups"
	"github.com/linode/linode-backups/rpc/params"
)

const listDoc = `
backups fetches one page of a linode's backups and shows every backup
cached for the linode so far, with the pages that have been fetched.

Pages are numbered from 1. Use --all to fetch every page.
`

const listExamples = `
    linode backups 1234
    linode backups 1234 --page 2
    linode backups 1234 --all --format yaml
`

// NewListCommand returns a command used to list the backups of a linode.
func NewListCommand() cmd.Command {
	return &listCommand{CommandBase: newCommandBase()}
}

type listCommand struct {
	CommandBase
	out cmd.Output

	linodeID string
	page     int
	all      bool
}

// Info implements Command.Info.
func (c *listCommand) Info() *cmd.Info {
	return linodecmd.Info(&cmd.Info{
		Name:     "backups",
		Args:     "<linode-id>",
		Purpose:  "Lists the backups of a linode.",
		Doc:      listDoc,
		Examples: listExamples,
		SeeAlso: []string{
			"show-backup",
			"create-backup",
		},
	})
}

// SetFlags implements Command.SetFlags.
func (c *listCommand) SetFlags(f *gnuflag.FlagSet) {
	c.CommandBase.SetFlags(f)
	f.IntVar(&c.page, "page", 1, "The page to fetch")
	f.BoolVar(&c.all, "all", false, "Fetch every page")
	c.out.AddFlags(f, "tabular", map[string]cmd.Formatter{
		"tabular": formatBackupsTabular,
		"yaml":    cmd.FormatYaml,
		"json":    cmd.FormatJson,
	})
}

// Init implements Command.Init.
func (c *listCommand) Init(args []string) error {
	id, args, err := linodeArg(args)
	if err != nil {
		return errors.Trace(err)
	}
	c.linodeID = id
	if c.page < 1 {
		return errors.NotValidf("page %d", c.page)
	}
	if c.all && c.page != 1 {
		return errors.New("--page and --all cannot be used together")
	}
	return cmd.CheckEmpty(args)
}

// Run implements Command.Run.
func (c *listCommand) Run(ctx *cmd.Context) error {
	var result backupsList
	err := c.run(ctx, func(stdctx context.Context, s session) error {
		if c.all {
			op := s.client.FetchAllBackups(c.linodeID, s.config.PageConcurrency())
			if _, err := op(stdctx, s.dispatcher); err != nil {
				return errors.Trace(err)
			}
		} else {
			op := s.client.FetchBackups(c.page-1, c.linodeID)
			if _, err := op(stdctx, s.dispatcher); err != nil {
				return errors.Trace(err)
			}
		}
		cached, err := s.store.Backups(c.linodeID)
		if err != nil {
			return errors.Trace(err)
		}
		result = newBackupsList(cached)
		return nil
	})
	if err != nil {
		return errors.Trace(err)
	}
	return c.out.Write(ctx, result)
}

// backupsList is the output of the backups command.
type backupsList struct {
	TotalPages   int             `yaml:"total-pages" json:"total-pages"`
	TotalResults int             `yaml:"total-results" json:"total-results"`
	PagesFetched []int           `yaml:"pages-fetched" json:"pages-fetched"`
	Missing      []int           `yaml:"missing-pages,omitempty" json:"missing-pages,omitempty"`
	Backups      []params.Backup `yaml:"backups" json:"backups"`
}

func newBackupsList(b backups.Backups) backupsList {
	result := backupsList{
		TotalPages:   b.TotalPages,
		TotalResults: b.TotalResults,
		PagesFetched: b.PagesFetched.SortedValues(),
		Missing:      b.MissingPages(),
		Backups:      make([]params.Backup, 0, len(b.Backups)),
	}
	for _, backup := range b.Backups {
		result.Backups = append(result.Backups, backup)
	}
	sort.Slice(result.Backups, func(i, j int) bool {
		bi, bj := result.Backups[i], result.Backups[j]
		if bi.Created != bj.Created {
			return bi.Created < bj.Created
		}
		return bi.ID < bj.ID
	})
	return result
}
