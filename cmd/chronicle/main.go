// Command chronicle is developer-ergonomics tooling around the core
// library: it exercises put/get/merge/delete against a Drone backed by an
// in-memory store or a single on-disk directory. It is not a replication
// protocol or an RPC surface.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aledsdavies/chronicle/core/drone"
	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/aledsdavies/chronicle/core/key"
	"github.com/aledsdavies/chronicle/core/model"
	_ "github.com/aledsdavies/chronicle/internal/clischema"
	"github.com/aledsdavies/chronicle/internal/filestore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "chronicle:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var storeDir string

	root := &cobra.Command{
		Use:           "chronicle",
		Short:         "Inspect a chronicle versioned object store from the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&storeDir, "store", "", "backing directory (default: in-memory, does not persist across invocations)")

	root.AddCommand(newPutCmd(&storeDir))
	root.AddCommand(newGetCmd(&storeDir))
	root.AddCommand(newMergeCmd(&storeDir))
	root.AddCommand(newDeleteCmd(&storeDir))
	return root
}

func openDrone(dir string) (*drone.Drone, error) {
	id := key.New("/Drone/chronicle-cli")
	if dir == "" {
		return drone.New(id), nil
	}
	fs, err := filestore.New(dir)
	if err != nil {
		return nil, fmt.Errorf("opening store directory %q: %w", dir, err)
	}
	return drone.New(id, drone.WithStore(fs)), nil
}

func newPutCmd(storeDir *string) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "put <key>",
		Short: "Create or update an entity's fields and commit a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDrone(*storeDir)
			if err != nil {
				return err
			}
			k := key.New(args[0])

			m, err := loadOrCreate(d, k)
			if err != nil {
				return err
			}

			fields, err := fieldsOf(m)
			if err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("invalid --set %q: expected key=value", kv)
				}
				fields[name] = value
			}
			if err := m.SetAttribute("fields", fields); err != nil {
				return err
			}

			v, err := m.Commit()
			if err != nil {
				return err
			}
			if err := d.PutModel(m); err != nil {
				return err
			}
			fmt.Printf("put %s @ %s\n", k.String(), v.ShortHash(12))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "key=value field to set (repeatable)")
	return cmd
}

func loadOrCreate(d *drone.Drone, k key.Key) (*model.Model, error) {
	m, err := d.Get(k)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, errors.KindKey) {
		return nil, err
	}
	return model.New(k, "Generic")
}

func fieldsOf(m *model.Model) (map[string]any, error) {
	v, err := m.AttributeValue("fields")
	if err != nil {
		return nil, err
	}
	existing, _ := v.(map[string]any)
	out := make(map[string]any, len(existing))
	for name, val := range existing {
		out[name] = val
	}
	return out, nil
}

func newGetCmd(storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print an entity's current version and fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDrone(*storeDir)
			if err != nil {
				return err
			}
			m, err := d.Get(key.New(args[0]))
			if err != nil {
				return err
			}
			printModel(m)
			return nil
		},
	}
}

func printModel(m *model.Model) {
	v := m.Version()
	fmt.Printf("key:       %s\n", m.Key().String())
	fmt.Printf("hash:      %s\n", v.Hash())
	fmt.Printf("parent:    %s\n", v.Parent())
	fmt.Printf("created:   %d\n", v.Created())
	fmt.Printf("committed: %d\n", v.Committed())

	fields, _ := fieldsOf(m)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %v\n", name, fields[name])
	}
}

func newMergeCmd(storeDir *string) *cobra.Command {
	var remoteDir string
	cmd := &cobra.Command{
		Use:   "merge <key>",
		Short: "Merge another drone's version of an entity into this store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			local, err := openDrone(*storeDir)
			if err != nil {
				return err
			}
			remote, err := openDrone(remoteDir)
			if err != nil {
				return err
			}

			k := key.New(args[0])
			remoteVersion, err := remote.GetVersion(k)
			if err != nil {
				return fmt.Errorf("reading remote version: %w", err)
			}

			merged, err := local.Merge(remoteVersion)
			if err != nil {
				return err
			}
			printModel(merged)
			return nil
		},
	}
	cmd.Flags().StringVar(&remoteDir, "remote-store", "", "remote drone's backing directory")
	cmd.MarkFlagRequired("remote-store")
	return cmd
}

func newDeleteCmd(storeDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove an entity from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := openDrone(*storeDir)
			if err != nil {
				return err
			}
			return d.Delete(key.New(args[0]))
		},
	}
}
