package main

import (
	"fmt"

	"github.com/amonks/tasktracker/internal/listflags"
	"github.com/amonks/tasktracker/task"
	"github.com/spf13/cobra"
)

var epicSubtasksCmd = &cobra.Command{
	Use:   "subtasks <epic-id>",
	Short: "List an epic's subtasks in the order they were added",
	Args:  cobra.ExactArgs(1),
	RunE:  runEpicSubtasks,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently viewed tasks, epics and subtasks, oldest first",
	Long: `List recently viewed tasks, epics and subtasks, oldest first.

History is kept in memory by the process that serves reads, so it is only
useful with --remote.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var prioritizedCmd = &cobra.Command{
	Use:   "prioritized",
	Short: "List scheduled tasks and subtasks by start time",
	Args:  cobra.NoArgs,
	RunE:  runPrioritized,
}

var (
	epicSubtasksJSON     bool
	epicSubtasksStatuses []string
	historyJSON          bool
	prioritizedJSON      bool
	prioritizedStatuses  []string
)

func init() {
	epicCmd.AddCommand(epicSubtasksCmd)
	rootCmd.AddCommand(historyCmd, prioritizedCmd)

	epicSubtasksCmd.Flags().BoolVar(&epicSubtasksJSON, "json", false, "Output as JSON")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	prioritizedCmd.Flags().BoolVar(&prioritizedJSON, "json", false, "Output as JSON")
	listflags.AddStatusFlag(epicSubtasksCmd, &epicSubtasksStatuses)
	listflags.AddStatusFlag(prioritizedCmd, &prioritizedStatuses)
}

func runEpicSubtasks(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	filter, err := listflags.ParseStatuses(epicSubtasksStatuses)
	if err != nil {
		return err
	}
	backend, err := openBackend()
	if err != nil {
		return err
	}
	subtasks, err := backend.EpicSubtasks(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printEntities(filter.Keep(entities(subtasks)), task.KindSubtask, epicSubtasksJSON, fmt.Sprintf("Epic %d has no subtasks.", id))
}

func runHistory(cmd *cobra.Command, args []string) error {
	backend, err := openBackend()
	if err != nil {
		return err
	}
	items, err := backend.History(cmd.Context())
	if err != nil {
		return err
	}
	return printEntities(items, task.KindNone, historyJSON, "No history.")
}

func runPrioritized(cmd *cobra.Command, args []string) error {
	filter, err := listflags.ParseStatuses(prioritizedStatuses)
	if err != nil {
		return err
	}
	backend, err := openBackend()
	if err != nil {
		return err
	}
	items, err := backend.PrioritizedTasks(cmd.Context())
	if err != nil {
		return err
	}
	return printEntities(filter.Keep(items), task.KindNone, prioritizedJSON, "No scheduled tasks.")
}

func printEntities(items []task.Entity, kind task.Kind, asJSON bool, empty string) error {
	if asJSON {
		return encodeJSONToStdout(viewsOf(items))
	}
	if len(items) == 0 {
		fmt.Println(empty)
		return nil
	}
	fmt.Print(formatEntityTable(items, kind))
	return nil
}
