package cli

import (
	"fmt"

	"github.com/skosovsky/conveyor"
	"github.com/skosovsky/conveyor/internal/config"
	"github.com/skosovsky/conveyor/manifest"

	"github.com/spf13/cobra"
)

func initCmd(a *app) *cobra.Command {
	var templateID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize template FS structure",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			eng, err := a.open()
			if err != nil {
				return err
			}
			_, err = eng.Init(templateID)
			return err
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID")
	_ = cmd.MarkFlagRequired("template-id")
	return cmd
}

func addpartCmd(a *app) *cobra.Command {
	var templateID, section, parts string
	cmd := &cobra.Command{
		Use:   "addpart",
		Short: "Add parts to a template's section",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := conveyor.ParseSection(section)
			if err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			return eng.AddParts(templateID, s, config.SplitList(parts))
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID")
	cmd.Flags().StringVarP(&section, "section", "S", "", "kickstart section name (commands, packages, etc.)")
	cmd.Flags().StringVarP(&parts, "parts", "p", "", "comma-separated list of parts")
	for _, name := range []string{"template-id", "section", "parts"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func mvpartCmd(a *app) *cobra.Command {
	var section, src, dst string
	cmd := &cobra.Command{
		Use:   "mvpart",
		Short: "Rename a part and every template reference to it",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := conveyor.ParseSection(section)
			if err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			return eng.RenamePart(s, src, dst)
		},
	}
	cmd.Flags().StringVarP(&section, "section", "S", "", "kickstart section name (commands, packages, etc.)")
	cmd.Flags().StringVarP(&src, "src", "s", "", "current part name")
	cmd.Flags().StringVarP(&dst, "dst", "d", "", "new part name")
	for _, name := range []string{"section", "src", "dst"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func cloneCmd(a *app) *cobra.Command {
	var src, dst string
	cmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone an existing template",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			eng, err := a.open()
			if err != nil {
				return err
			}
			_, err = eng.Clone(src, dst)
			return err
		},
	}
	cmd.Flags().StringVarP(&src, "src-template-id", "s", "", "existing template name")
	cmd.Flags().StringVarP(&dst, "dst-template-id", "d", "", "new template name")
	_ = cmd.MarkFlagRequired("src-template-id")
	_ = cmd.MarkFlagRequired("dst-template-id")
	return cmd
}

func createCmd(a *app) *cobra.Command {
	var templateID, file string
	lists := make(map[conveyor.Section]*string)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new template from lists of parts or a manifest file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			id, sel, err := createSelection(templateID, file, lists)
			if err != nil {
				return err
			}
			eng, err := a.open()
			if err != nil {
				return err
			}
			_, err = eng.Create(id, sel)
			return err
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID (overrides the manifest id)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML template manifest")
	for _, s := range conveyor.Sections() {
		lists[s] = cmd.Flags().String(string(s), "", fmt.Sprintf("comma-separated %s parts", s))
	}
	cmd.MarkFlagsOneRequired("template-id", "file")
	return cmd
}

// createSelection merges the manifest, if any, with the per-section flags.
func createSelection(templateID, file string, lists map[conveyor.Section]*string) (string, conveyor.Selection, error) {
	var sel conveyor.Selection
	if file != "" {
		m, err := manifest.ParseFile(file)
		if err != nil {
			return "", nil, err
		}
		sel = m.Selection()
		if templateID == "" {
			templateID = m.ID
		}
	}
	for _, s := range conveyor.Sections() {
		names := config.SplitList(*lists[s])
		for _, n := range names {
			if err := conveyor.ValidateName(n); err != nil {
				return "", nil, fmt.Errorf("--%s: %w", s, err)
			}
		}
		if len(names) > 0 {
			sel = append(sel, conveyor.SelectionEntry{Section: s, Names: names})
		}
	}
	return templateID, sel, nil
}

func exportCmd(a *app) *cobra.Command {
	var templateID string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a template's parts as a YAML manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			eng, err := a.open()
			if err != nil {
				return err
			}
			bp, err := eng.Store().Get(templateID)
			if err != nil {
				return err
			}
			return manifest.FromBlueprint(bp).Write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&templateID, "template-id", "t", "", "template ID")
	_ = cmd.MarkFlagRequired("template-id")
	return cmd
}
