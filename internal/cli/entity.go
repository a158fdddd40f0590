package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/braude/garage/pkg/container"
	"github.com/braude/garage/pkg/garage"
	"github.com/braude/garage/pkg/types"
)

// entityCmd builds the command group for one resource.
type entityCmd[E any] struct {
	a       *app
	name    string // Resource name, e.g. "car-services".
	entity  string // Singular, e.g. "car service".
	pick    func(*garage.Store) *container.Container[E, int64]
	columns []column[E]
}

// listOutput is the JSON shape of list and search results.
type listOutput[E any] struct {
	Items      []E   `json:"items"`
	TotalItems int64 `json:"totalItems"`
}

func (ec *entityCmd[E]) command(short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   ec.name,
		Short: short,
	}
	cmd.AddCommand(
		ec.listCmd(),
		ec.searchCmd(),
		ec.getCmd(),
		ec.createCmd(),
		ec.updateCmd(),
		ec.deleteCmd(),
		ec.countCmd(),
	)
	return cmd
}

func (ec *entityCmd[E]) target() (*container.Container[E, int64], error) {
	s, err := ec.a.store()
	if err != nil {
		return nil, err
	}
	return ec.pick(s), nil
}

func (ec *entityCmd[E]) listCmd() *cobra.Command {
	var (
		pf      pageFlags
		filters []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", ec.name),
		Long: fmt.Sprintf(`List %s, optionally filtered and paged.

Filters take the form field.op=value with op one of equals, notEquals,
contains, specified, greaterThan, lessThan. Multiple filters are ANDed.

Example:
  garage %s list --page 0 --size 20 --sort id,desc
  garage %s list --filter id.greaterThan=3`, ec.name, ec.name, ec.name),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseFilters(filters)
			if err != nil {
				return err
			}
			c, err := ec.target()
			if err != nil {
				return err
			}
			page := pf.page(cmd.Flags())
			var items []E
			if len(criteria) > 0 {
				items, err = c.Filter(cmd.Context(), criteria, page)
			} else {
				items, err = c.List(cmd.Context(), page)
			}
			if err != nil {
				return err
			}
			return ec.printList(items, c.Snapshot().TotalItems)
		},
	}
	pf.register(cmd.Flags())
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "criteria as field.op=value (repeatable)")
	return cmd
}

func (ec *entityCmd[E]) searchCmd() *cobra.Command {
	var pf pageFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: fmt.Sprintf("Search %s by free text", ec.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ec.target()
			if err != nil {
				return err
			}
			items, err := c.Search(cmd.Context(), args[0], pf.page(cmd.Flags()))
			if err != nil {
				return err
			}
			return ec.printList(items, c.Snapshot().TotalItems)
		},
	}
	pf.register(cmd.Flags())
	return cmd
}

func (ec *entityCmd[E]) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one %s", ec.entity),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := ec.target()
			if err != nil {
				return err
			}
			e, err := c.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return ec.printOne(e)
		},
	}
}

func (ec *entityCmd[E]) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create field=value...",
		Short: fmt.Sprintf("Create a %s", ec.entity),
		Long: fmt.Sprintf(`Create a %s from field=value pairs. Field names are the JSON
names shown by "get --json". Empty values are omitted from the request.`, ec.entity),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ec.submit(cmd, nil, args)
		},
	}
}

func (ec *entityCmd[E]) updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> field=value...",
		Short: fmt.Sprintf("Change fields of a %s", ec.entity),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return ec.submit(cmd, &id, args[1:])
		},
	}
}

// submit runs the edit form: open, assign each field, submit.
func (ec *entityCmd[E]) submit(cmd *cobra.Command, id *int64, assignments []string) error {
	c, err := ec.target()
	if err != nil {
		return err
	}
	f, err := container.OpenForm(cmd.Context(), c, id)
	if err != nil {
		return err
	}
	for _, kv := range assignments {
		field, value, ok := strings.Cut(kv, "=")
		if !ok {
			return userError(fmt.Errorf("invalid assignment %q (expected field=value)", kv))
		}
		if err := f.Set(field, value); err != nil {
			return userError(err)
		}
	}
	saved, _, err := f.Submit(cmd.Context())
	if err != nil {
		return err
	}
	return ec.printOne(saved)
}

func (ec *entityCmd[E]) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete a %s", ec.entity),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := ec.target()
			if err != nil {
				return err
			}
			if err := c.Remove(cmd.Context(), id); err != nil {
				return err
			}
			if ec.a.jsonMode {
				return printJSON(ec.a.out, map[string]int64{"deleted": id})
			}
			fmt.Fprintf(ec.a.out, "deleted %s %d\n", ec.entity, id)
			return nil
		},
	}
}

func (ec *entityCmd[E]) countCmd() *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "count",
		Short: fmt.Sprintf("Count %s", ec.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := parseFilters(filters)
			if err != nil {
				return err
			}
			c, err := ec.target()
			if err != nil {
				return err
			}
			n, err := c.Count(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			fmt.Fprintln(ec.a.out, n)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "criteria as field.op=value (repeatable)")
	return cmd
}

func (ec *entityCmd[E]) printList(items []E, total int64) error {
	if ec.a.jsonMode {
		if items == nil {
			items = []E{}
		}
		return printJSON(ec.a.out, listOutput[E]{Items: items, TotalItems: total})
	}
	if err := printTable(ec.a.out, ec.columns, items); err != nil {
		return err
	}
	fmt.Fprintf(ec.a.out, "%d of %d %s\n", len(items), total, ec.name)
	return nil
}

func (ec *entityCmd[E]) printOne(e E) error {
	if ec.a.jsonMode {
		return printJSON(ec.a.out, e)
	}
	return printRecord(ec.a.out, ec.columns, e)
}

// pageFlags are the --page, --size and --sort flags. Only flags given on the
// command line are sent, so a bare list keeps the server defaults.
type pageFlags struct {
	number int
	size   int
	sort   []string
}

func (p *pageFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&p.number, "page", 0, "page index")
	fs.IntVar(&p.size, "size", 0, "page size")
	fs.StringArrayVar(&p.sort, "sort", nil, "sort order as field,asc|desc (repeatable)")
}

func (p *pageFlags) page(fs *pflag.FlagSet) types.Page {
	var page types.Page
	if fs.Changed("page") {
		page.Number = &p.number
	}
	if fs.Changed("size") {
		page.Size = &p.size
	}
	page.Sort = p.sort
	return page
}

func parseFilters(raw []string) (types.Criteria, error) {
	var out types.Criteria
	for _, s := range raw {
		cr, err := types.ParseCriterion(s)
		if err != nil {
			return nil, userError(err)
		}
		out = append(out, cr)
	}
	return out, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, userError(fmt.Errorf("id %q: %w", s, types.ErrInvalidID))
	}
	return id, nil
}
