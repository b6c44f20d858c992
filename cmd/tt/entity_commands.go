package main

import (
	"fmt"
	"os"

	"github.com/amonks/tasktracker/internal/editor"
	"github.com/amonks/tasktracker/internal/listflags"
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

var (
	taskCmd    = newKindCmd(taskSpec, "Manage tasks")
	epicCmd    = newKindCmd(epicSpec, "Manage epics and their subtasks")
	subtaskCmd = newKindCmd(subtaskSpec, "Manage subtasks")
)

func init() {
	rootCmd.AddCommand(taskCmd, epicCmd, subtaskCmd)
}

// newKindCmd builds create, update, show, delete, list and clear for one kind.
func newKindCmd(spec kindSpec, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   spec.singular,
		Short: short,
	}

	var createFlags entityFlags
	var createEdit bool
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + spec.singular,
		Long: `Create a ` + spec.singular + `.

With --edit, or with no flags on an interactive terminal, the fields are
filled in with $EDITOR after the flags are applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, spec, &createFlags, createEdit)
		},
	}
	createFlags.register(createCmd, spec)
	createCmd.Flags().BoolVarP(&createEdit, "edit", "e", false, "Open $EDITOR to fill in the fields")

	var updateFlags entityFlags
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a " + spec.singular,
		Long: `Update a ` + spec.singular + `. Only the flags given are changed.

If no entity has the id yet, the ` + spec.singular + ` is inserted with that id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, spec, &updateFlags, args[0])
		},
	}
	updateFlags.register(updateCmd, spec)

	var showJSON bool
	showCmd := &cobra.Command{
		Use:   "show <id>...",
		Short: "Show " + spec.plural,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, spec, args, showJSON)
		},
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Wrap descriptions as plain text instead of rendering markdown")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete " + spec.plural,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, spec, args)
		},
	}

	var listJSON bool
	var listStatuses []string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List " + spec.plural,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, spec, listJSON, listStatuses)
		},
	}
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listflags.AddStatusFlag(listCmd, &listStatuses)

	clearShort := "Delete every " + spec.singular
	if spec.kind == task.KindEpic {
		clearShort = "Delete every epic and subtask"
	}
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: clearShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClear(cmd, spec)
		},
	}

	cmd.AddCommand(createCmd, updateCmd, newEditCmd(spec), showCmd, deleteCmd, listCmd, clearCmd)
	addEntityFlagAliases(createCmd, updateCmd)
	return cmd
}

func runCreate(cmd *cobra.Command, spec kindSpec, flags *entityFlags, edit bool) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}

	var d draft
	if spec.kind != task.KindEpic {
		d.task.Status = task.StatusNew
	}
	if err := flags.apply(cmd, &d, cmd.InOrStdin()); err != nil {
		return err
	}
	if edit || (cmd.Flags().NFlag() == 0 && editor.IsInteractive()) {
		if err := editDraft(spec, &d); err != nil {
			return err
		}
	}

	id, err := spec.create(cmd.Context(), backend, d)
	if err != nil {
		return err
	}
	fmt.Printf("Created %s %d: %s\n", spec.singular, id, titleOrPlaceholder(d.task))
	return nil
}

func runUpdate(cmd *cobra.Command, spec kindSpec, flags *entityFlags, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	backend, err := openBackend()
	if err != nil {
		return err
	}

	d, _, err := spec.existing(cmd.Context(), backend, id)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, &d, cmd.InOrStdin()); err != nil {
		return err
	}
	if err := spec.update(cmd.Context(), backend, d); err != nil {
		return err
	}
	fmt.Printf("Updated %s %d: %s\n", spec.singular, id, titleOrPlaceholder(d.task))
	return nil
}

func runShow(cmd *cobra.Command, spec kindSpec, args []string, asJSON bool) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}

	items := make([]task.Entity, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		item, err := spec.get(cmd.Context(), backend, id)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	if asJSON {
		views := make([]entityView, 0, len(items))
		for _, item := range items {
			views = append(views, viewOf(item))
		}
		if len(views) == 1 {
			return encodeJSONToStdout(views[0])
		}
		return encodeJSONToStdout(views)
	}

	for i, item := range items {
		if i > 0 {
			fmt.Println("---")
		}
		printEntityDetail(os.Stdout, item)
	}
	return nil
}

func runDelete(cmd *cobra.Command, spec kindSpec, args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return err
		}
		if err := spec.remove(cmd.Context(), backend, id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s %d\n", spec.singular, id)
	}
	return nil
}

func runList(cmd *cobra.Command, spec kindSpec, asJSON bool, statuses []string) error {
	filter, err := listflags.ParseStatuses(statuses)
	if err != nil {
		return err
	}
	backend, err := openBackend()
	if err != nil {
		return err
	}
	items, err := spec.list(cmd.Context(), backend)
	if err != nil {
		return err
	}
	return printEntities(filter.Keep(items), spec.kind, asJSON, fmt.Sprintf("No %s found.", spec.plural))
}

func runClear(cmd *cobra.Command, spec kindSpec) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	if err := spec.clear(cmd.Context(), backend); err != nil {
		return err
	}
	fmt.Printf("Deleted all %s\n", spec.plural)
	return nil
}

func titleOrPlaceholder(t task.Task) string {
	if t.Title == nil {
		return "(untitled)"
	}
	return *t.Title
}
