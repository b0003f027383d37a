package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/codepad/internal/preview"
	"github.com/michaelbrown/codepad/internal/storage"
	"github.com/michaelbrown/codepad/internal/storage/sqlite"
)

var (
	roomFlag       string
	limitFlag      int
	forceFlag      bool
	importName     string
	projectArchive string
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "Manage stored projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored projects",
	RunE:  runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show project details and files",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Store a project directory's html, css and js files",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsImport,
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project and its files",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsDelete,
}

var projectsArchiveCmd = &cobra.Command{
	Use:   "archive <project-id>",
	Short: "Download a stored project as a zip",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsArchive,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsImportCmd, projectsDeleteCmd, projectsArchiveCmd)

	projectsListCmd.Flags().StringVar(&roomFlag, "room", "", "Filter by room")
	projectsListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max projects to show")

	projectsImportCmd.Flags().StringVar(&roomFlag, "room", "", "Room the project belongs to")
	projectsImportCmd.Flags().StringVar(&importName, "name", "", "Project name (default: manifest name or directory name)")

	projectsDeleteCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")

	projectsArchiveCmd.Flags().StringVarP(&projectArchive, "output", "o", "", "Output file (default: <project>.zip)")
}

func openStore() (storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.Storage.DBPath)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := store.ListProjects(context.Background(), storage.ProjectListOptions{
		RoomID: roomFlag,
		Limit:  limitFlag,
	})
	if err != nil {
		return err
	}

	if len(projects) == 0 {
		fmt.Println("No projects found.")
		return nil
	}

	// Header
	fmt.Printf("%-10s %-30s %-20s %s\n", "ID", "NAME", "ROOM", "UPDATED")
	fmt.Println(strings.Repeat("─", 75))

	for _, p := range projects {
		name := truncate(p.Name, 28)
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("%-10s %-30s %-20s %s\n",
			shortID(p.ID), name, truncate(p.RoomID, 18), timeAgo(p.UpdatedAt))
	}

	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p, err := store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Project:  %s\n", p.ID)
	fmt.Printf("Name:     %s\n", p.Name)
	if p.RoomID != "" {
		fmt.Printf("Room:     %s\n", p.RoomID)
	}
	fmt.Printf("Created:  %s\n", p.CreatedAt.Format(time.RFC3339))
	fmt.Printf("Updated:  %s\n", p.UpdatedAt.Format(time.RFC3339))

	files, err := store.ListFiles(ctx, p.ID)
	if err != nil {
		return err
	}

	fmt.Printf("\nFiles: %d\n", len(files))
	fmt.Println(strings.Repeat("─", 60))
	for _, f := range files {
		fmt.Printf("  %-30s %-6s %d bytes\n", f.Name, f.Type, len(f.Content))
	}

	return nil
}

func runProjectsImport(cmd *cobra.Command, args []string) error {
	set, name, err := preview.LoadDir(args[0])
	if err != nil {
		return err
	}
	if set.Empty() {
		return fmt.Errorf("no html, css or js files in %s", args[0])
	}
	if importName != "" {
		name = importName
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p := &storage.Project{ID: uuid.NewString(), RoomID: roomFlag, Name: name}
	if err := store.CreateProject(ctx, p); err != nil {
		return err
	}

	for _, e := range set.Entries() {
		f := &storage.File{
			ProjectID: p.ID,
			Name:      e.Artifact.Name,
			Type:      string(e.Kind),
			Content:   e.Artifact.Content,
		}
		if err := store.SaveFile(ctx, f); err != nil {
			return fmt.Errorf("saving %s: %w", e.FileName(), err)
		}
	}

	fmt.Printf("Imported %s as project %s (%d files)\n", name, shortID(p.ID), len(set.Entries()))
	return nil
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p, err := store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}

	if !forceFlag {
		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf("Delete project %s - %q? [y/N] ", shortID(p.ID), name)
		var confirm string
		fmt.Scanln(&confirm)
		if strings.ToLower(confirm) != "y" {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := store.DeleteProject(ctx, p.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted project %s\n", shortID(p.ID))
	return nil
}

func runProjectsArchive(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	p, err := store.GetProject(ctx, args[0])
	if err != nil {
		return err
	}
	files, err := store.ListFiles(ctx, p.ID)
	if err != nil {
		return err
	}

	out := projectArchive
	if out == "" {
		out = p.Name
		if out == "" {
			out = shortID(p.ID)
		}
		out += ".zip"
	}
	return writeArchive(out, preview.FromFiles(files))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if len(s) > maxLen {
		return s[:maxLen] + ".."
	}
	return s
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
