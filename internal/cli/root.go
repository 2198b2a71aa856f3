package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) status() string {
	st := a.auth.State()
	parts := []string{}
	if st.User != nil {
		parts = append(parts, st.User.Email)
	}
	switch {
	case !st.IsAuthenticated:
	case st.IsOffline:
		parts = append(parts, "offline")
	default:
		parts = append(parts, "online")
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, " "))
}

func (a *App) root(ctx context.Context) {
	fmt.Println("Welcome to Planner CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("planner %s> ", a.status())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			a.help()
		case "register":
			err = a.register(ctx)
		case "login":
			err = a.login(ctx)
		case "logout":
			err = a.logout(ctx)
		case "status":
			fmt.Printf("%+v\n", a.auth.State())
		case "sync":
			a.auth.TriggerSync()
			fmt.Println("Sync scheduled")
		case "cloud":
			err = a.cloud(ctx)
		case "folders":
			err = a.folderTree(ctx)
		case "mkdir":
			err = a.addFolder(ctx, args)
		case "rmdir":
			err = a.deleteFolder(ctx, args)
		case "notes":
			err = a.listNotes(ctx, args)
		case "addnote":
			err = a.addNote(ctx, args)
		case "rmnote":
			err = a.deleteNote(ctx, args)
		case "find":
			err = a.searchNotes(ctx, args)
		case "tasks":
			err = a.listTasks(ctx)
		case "addtask":
			err = a.addTask(ctx)
		case "done":
			err = a.completeTask(ctx, args)
		case "today":
			err = a.todayTasks(ctx)
		case "overdue":
			err = a.overdueTasks(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}

		if err != nil {
			fmt.Println("Error:", err)
		}
	}
}

func (a *App) help() {
	if a.isLoggedIn() {
		fmt.Println("Available commands: folders, mkdir, rmdir, notes, addnote, rmnote, find,")
		fmt.Println("  tasks, addtask, done, today, overdue, sync, cloud, status, logout, exit")
	} else {
		fmt.Println("Available commands: register, login, status, exit")
	}
}
