package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shotdeck/shotdeck-agent/internal/structure"
	"github.com/spf13/cobra"
)

func (a *app) createCmd() *cobra.Command {
	var (
		templateName string
		shots        []string
	)
	cmd := &cobra.Command{
		Use:   "create <target-dir> <project-name>",
		Short: "Create a project from a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.template("createProject", templateName)
			if err != nil {
				return report(cmd.OutOrStdout(), structure.Failure(err))
			}
			res, err := a.engine.CreateProject(args[0], args[1], tmpl, shots)
			return report(cmd.OutOrStdout(), structure.CreateProjectOutcome(res, err))
		},
	}
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template name")
	cmd.Flags().StringSliceVarP(&shots, "shot", "s", nil, "shot to create (repeatable or comma-separated)")
	cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) addShotCmd() *cobra.Command {
	var templateName string
	cmd := &cobra.Command{
		Use:   "add-shot <project-dir> <shot-name>",
		Short: "Add a shot to an existing project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := a.template("addShot", templateName)
			if err != nil {
				return report(cmd.OutOrStdout(), structure.Failure(err))
			}
			shotPath, err := a.engine.AddShot(args[0], args[1], tmpl)
			return report(cmd.OutOrStdout(), structure.ShotOutcome(shotPath, err))
		},
	}
	cmd.Flags().StringVarP(&templateName, "template", "t", "", "template name")
	cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) addFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-folder <project-dir> <relative-path>",
		Short: "Create a folder (and missing parents) inside a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.engine.AddFolder(args[0], args[1])
			return report(cmd.OutOrStdout(), structure.PathOutcome(path, err))
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <project-dir> <old-relative-path> <new-name>",
		Short: "Rename a folder inside a project",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.engine.RenameFolder(args[0], args[1], args[2])
			return report(cmd.OutOrStdout(), structure.PathOutcome(path, err))
		},
	}
}

func (a *app) treeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tree <project-dir>",
		Short: "Print a project's folder tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.engine.ReadProjectStructure(args[0])
			if err != nil || asJSON {
				return report(cmd.OutOrStdout(), structure.TreeOutcome(args[0], tree, err))
			}
			return structure.RenderTree(cmd.OutOrStdout(), tree)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the available templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range a.templates.Names() {
				tmpl, _ := a.templates.Get(name)
				fmt.Fprintf(out, "%s\n", name)
				fmt.Fprintf(out, "  root:  %s\n", strings.Join(tmpl.Root, ", "))
				fmt.Fprintf(out, "  shots: %s\n", strings.Join(tmpl.ShotStructure, ", "))
			}
			return nil
		},
	}
}

// report prints res as indented JSON and turns a failed result into an error
// so the process exits non-zero.
func report(w io.Writer, res structure.Result) error {
	raw, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(raw))

	if !res.Success {
		return fmt.Errorf("%s: %s", res.Code, res.Error)
	}
	return nil
}
