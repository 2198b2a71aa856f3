package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/planner/internal/common"
	"github.com/dmitrijs2005/planner/internal/models"
)

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: id required", common.ErrorValidation)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad id %q", common.ErrorValidation, args[0])
	}
	return id, nil
}

// folders

func (a *App) folderTree(ctx context.Context) error {
	tree, err := a.folders.Tree(ctx, a.currentUserID())
	if err != nil {
		return err
	}
	if len(tree) == 0 {
		fmt.Println("No folders yet")
		return nil
	}
	for _, item := range tree {
		fmt.Printf("%s[%d] %s (%d notes)\n",
			strings.Repeat("  ", item.Level), item.ID, item.Name, item.NoteCount)
	}
	return nil
}

func (a *App) addFolder(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mkdir <name> [parent-id]")
	}
	var parent *int64
	if len(args) > 1 {
		id, err := parseID(args[1:])
		if err != nil {
			return err
		}
		parent = &id
	}
	folder, err := a.folders.Create(ctx, a.currentUserID(), args[0], parent)
	if err != nil {
		return err
	}
	fmt.Printf("Created folder [%d] %s\n", folder.ID, folder.Name)
	return nil
}

func (a *App) deleteFolder(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.folders.Delete(ctx, a.currentUserID(), id); err != nil {
		return err
	}
	fmt.Println("Folder deleted (with its subtree)")
	return nil
}

// notes

func (a *App) listNotes(ctx context.Context, args []string) error {
	userID := a.currentUserID()
	var (
		items []models.Note
		err   error
	)
	switch {
	case len(args) == 0:
		items, err = a.notes.List(ctx, userID)
	case args[0] == "root":
		items, err = a.notes.ListRoot(ctx, userID)
	default:
		var folderID int64
		if folderID, err = parseID(args); err != nil {
			return err
		}
		items, err = a.notes.ListInFolder(ctx, userID, folderID)
	}
	if err != nil {
		return err
	}
	for _, n := range items {
		title := "(untitled)"
		if n.Title != nil {
			title = *n.Title
		}
		fmt.Printf("[%d] %s: %s\n", n.ID, title, firstLine(n.Content))
	}
	if len(items) == 0 {
		fmt.Println("No notes")
	}
	return nil
}

func (a *App) addNote(ctx context.Context, args []string) error {
	var folderID *int64
	if len(args) > 0 {
		id, err := parseID(args)
		if err != nil {
			return err
		}
		folderID = &id
	}
	title, err := getSimpleText(a.reader, "Title (optional)", os.Stdout)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Content", os.Stdout)
	if err != nil {
		return err
	}
	note, err := a.notes.Create(ctx, a.currentUserID(), folderID, title, content)
	if err != nil {
		return err
	}
	fmt.Printf("Created note [%d]\n", note.ID)
	return nil
}

func (a *App) deleteNote(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return a.notes.Delete(ctx, a.currentUserID(), id)
}

func (a *App) searchNotes(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: find <text>")
	}
	found, err := a.notes.Search(ctx, a.currentUserID(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	for _, n := range found {
		where := "root"
		if n.FolderName != nil {
			where = *n.FolderName
		}
		fmt.Printf("[%d] (%s) %s\n", n.ID, where, firstLine(n.Content))
	}
	if len(found) == 0 {
		fmt.Println("No matches")
	}
	return nil
}

// tasks

func (a *App) listTasks(ctx context.Context) error {
	items, err := a.tasks.List(ctx, a.currentUserID())
	if err != nil {
		return err
	}
	printTasks(items)
	return nil
}

func (a *App) addTask(ctx context.Context) error {
	content, err := getSimpleText(a.reader, "Task", os.Stdout)
	if err != nil {
		return err
	}
	date, err := getSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}
	prio, err := getSimpleText(a.reader, "Priority (high/low, default low)", os.Stdout)
	if err != nil {
		return err
	}

	task, err := a.tasks.Create(ctx, a.currentUserID(), content, models.Priority(prio), date, nil, nil)
	if err != nil {
		return err
	}
	fmt.Printf("Created task [%d]\n", task.ID)
	return nil
}

func (a *App) completeTask(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return a.tasks.SetCompleted(ctx, a.currentUserID(), id, true)
}

func (a *App) todayTasks(ctx context.Context) error {
	items, err := a.tasks.Today(ctx, a.currentUserID())
	if err != nil {
		return err
	}
	printTasks(items)
	return nil
}

func (a *App) overdueTasks(ctx context.Context) error {
	items, err := a.tasks.Overdue(ctx, a.currentUserID())
	if err != nil {
		return err
	}
	printTasks(items)
	return nil
}

func printTasks(items []models.Task) {
	for _, task := range items {
		mark := " "
		if task.Completed {
			mark = "x"
		}
		when := ""
		if task.Date != nil {
			when = " " + *task.Date
			if task.StartTime != nil {
				when += " " + *task.StartTime
			}
		}
		fmt.Printf("[%d] [%s] (%s)%s %s\n", task.ID, mark, task.Priority, when, task.Content)
	}
	if len(items) == 0 {
		fmt.Println("No tasks")
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 60 {
		s = s[:60] + "..."
	}
	return s
}
