package main

import (
	"fmt"
	"time"

	"github.com/amonks/tasktracker/internal/editor"
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

func newEditCmd(spec kindSpec) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a " + spec.singular + " in $EDITOR",
		Long: `Edit a ` + spec.singular + ` in $EDITOR.

The fields are written as TOML above a --- line and the description below it.
Empty values clear optional fields. If no entity has the id yet, the
` + spec.singular + ` is inserted with that id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, spec, args[0])
		},
	}
}

func runEdit(cmd *cobra.Command, spec kindSpec, arg string) error {
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
	if err := editDraft(spec, &d); err != nil {
		return err
	}
	if err := spec.update(cmd.Context(), backend, d); err != nil {
		return err
	}
	fmt.Printf("Updated %s %d: %s\n", spec.singular, id, titleOrPlaceholder(d.task))
	return nil
}

// editDraft opens d in the editor and copies the result back onto it.
func editDraft(spec kindSpec, d *draft) error {
	parsed, err := editor.EditEntity(editor.DataFromTask(spec.kind, d.task, d.epicID))
	if err != nil {
		return err
	}
	if err := parsed.Apply(spec.kind, &d.task, time.Local); err != nil {
		return err
	}
	if spec.kind == task.KindSubtask {
		d.epicID = parsed.EpicID
	}
	return nil
}
