package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/inamate/regionedit/internal/editor"
	"github.com/inamate/regionedit/internal/eventloop"
	"github.com/inamate/regionedit/internal/logging"
)

func newVariantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "Describe the built-in editor variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return emit(cmd, editor.Descriptors())
		},
	}
}

func newDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults <variant>",
		Short: "Print the payload a fresh editor would push",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := lookupVariant(args[0])
			if err != nil {
				return err
			}
			e := editor.New(v, editor.Options{
				NodeID: "defaults",
				Loop:   eventloop.NewManual(time.Time{}),
				Logger: logging.Nop(),
			})
			defer e.Destroy()
			return emit(cmd, e.Payload())
		},
	}
}

func lookupVariant(name string) (editor.Variant, error) {
	v, ok := editor.VariantByName(name)
	if !ok {
		return editor.Variant{}, fmt.Errorf("unknown variant %q (try: regionctl variants)", name)
	}
	return v, nil
}
