package main

import (
	"fmt"
	"os"
	"strconv"

	"anx-go/internal/app"
	"anx-go/internal/config"
	"anx-go/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// app.Close(). operation identifies the CLI command being run.
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if root := defaults["library_root"]; root != "" {
		cfg.LibraryRoot = root
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id: %s", arg)
	}
	return id, nil
}

var rootCmd = &cobra.Command{
	Use:   "anx",
	Short: "Synchronize an ANX-style reading library as a virtual device",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init <library-root>",
	Short: "Initialize configuration for a library root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		deviceID := uuid.New().String()
		cfg := config.NewConfig(deviceID, args[0])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Device ID:    %s\n", deviceID)
		fmt.Printf("Library root: %s\n", cfg.LibraryRoot)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Device ID:    %s\n", cfg.DeviceID)
		fmt.Printf("Library root: %s\n", cfg.LibraryRoot)
		fmt.Printf("Log dir:      %s\n", cfg.LogDir)
		return nil
	},
}

// list command
var listLong bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the device's books as a virtual file tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		listing, err := a.Listing()
		if err != nil {
			return fmt.Errorf("listing device: %w", err)
		}

		info, err := a.Info()
		if err != nil {
			return fmt.Errorf("reading device info: %w", err)
		}
		fmt.Printf("%s (%d / %d bytes free)\n", info.Name, info.FreeBytes, info.TotalBytes)

		for _, entry := range listing.Entries {
			if entry.IsDir {
				fmt.Printf("%s/\n", entry.Path)
				continue
			}
			if listLong {
				fmt.Printf("  %-60s %10d  %s  #%d\n", entry.Path, entry.Size,
					entry.UpdatedAt.UTC().Format("2006-01-02 15:04"), entry.BookID)
			} else {
				fmt.Printf("  %s\n", entry.Path)
			}
		}
		return nil
	},
}

// add command
var (
	addTitle  string
	addAuthor string
	addCover  string
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Copy a book onto the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		book, err := a.AddBook(args[0], addTitle, addAuthor, addCover)
		if err != nil {
			return fmt.Errorf("adding book: %w", err)
		}

		fmt.Printf("Added #%d: %s - %s (%s)\n", book.ID, book.Title, book.Author, book.FilePath)
		return nil
	},
}

// delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a book from the device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteBook(id); err != nil {
			return fmt.Errorf("deleting book: %w", err)
		}

		fmt.Printf("Deleted #%d\n", id)
		return nil
	},
}

// update command
var (
	updateTitle       string
	updateAuthor      string
	updateRating      float64
	updateDescription string
	updateGroup       int64
	updatePosition    string
	updatePercentage  float64
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a book's metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		fields := &model.BookUpdate{}
		flags := cmd.Flags()
		if flags.Changed("title") {
			fields.Title = &updateTitle
		}
		if flags.Changed("author") {
			fields.Author = &updateAuthor
		}
		if flags.Changed("rating") {
			fields.Rating = &updateRating
		}
		if flags.Changed("description") {
			fields.Description = &updateDescription
		}
		if flags.Changed("group") {
			fields.GroupID = &updateGroup
		}
		if flags.Changed("position") {
			fields.LastReadPosition = &updatePosition
		}
		if flags.Changed("percentage") {
			fields.ReadingPercentage = &updatePercentage
		}

		a, err := newApp("Update")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.UpdateBook(id, fields); err != nil {
			return fmt.Errorf("updating book: %w", err)
		}

		fmt.Printf("Updated #%d\n", id)
		return nil
	},
}

// info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Info")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.Info()
		if err != nil {
			return fmt.Errorf("reading device info: %w", err)
		}

		fmt.Printf("Device:       %s %s\n", info.Name, info.Version)
		fmt.Printf("Device ID:    %s\n", info.DeviceID)
		fmt.Printf("Library root: %s\n", info.LibraryRoot)
		fmt.Printf("Free space:   %d / %d bytes\n", info.FreeBytes, info.TotalBytes)
		return nil
	},
}

// reading command
var readingCmd = &cobra.Command{
	Use:   "reading <id>",
	Short: "Show total reading time for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Reading")
		if err != nil {
			return err
		}
		defer a.Close()

		seconds, err := a.ReadingTime(id)
		if err != nil {
			return fmt.Errorf("aggregating reading time: %w", err)
		}

		fmt.Printf("Book #%d: %ds total reading time\n", id, seconds)
		return nil
	},
}

// verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check catalog and file tree consistency",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Verify")
		if err != nil {
			return err
		}
		defer a.Close()

		issues, err := a.Verify()
		if err != nil {
			return fmt.Errorf("verifying library: %w", err)
		}

		if len(issues) == 0 {
			fmt.Println("Library is consistent")
			return nil
		}

		for _, issue := range issues {
			fmt.Println(issue)
		}
		return fmt.Errorf("found %d inconsistencies", len(issues))
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "show sizes, timestamps and catalog ids")

	addCmd.Flags().StringVar(&addTitle, "title", "", "book title (default: file name)")
	addCmd.Flags().StringVar(&addAuthor, "author", "", "book author (default: Unknown)")
	addCmd.Flags().StringVar(&addCover, "cover", "", "path to a JPEG cover image")

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "new title")
	updateCmd.Flags().StringVar(&updateAuthor, "author", "", "new author")
	updateCmd.Flags().Float64Var(&updateRating, "rating", 0, "new rating")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "new description")
	updateCmd.Flags().Int64Var(&updateGroup, "group", 0, "new group id")
	updateCmd.Flags().StringVar(&updatePosition, "position", "", "new reading position (opaque)")
	updateCmd.Flags().Float64Var(&updatePercentage, "percentage", 0, "new reading percentage [0,1]")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(readingCmd)
	rootCmd.AddCommand(verifyCmd)
}
