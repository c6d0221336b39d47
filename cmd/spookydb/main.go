// Copyright 2025 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command spookydb is a small read-only inspection CLI over a SpookyDB
// store, exercising the library's public read surface from outside the
// package.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	spookydb "github.com/timothybesel/spooky-db-module"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spookydb",
		Short: "Inspect a SpookyDB store",
	}
	root.AddCommand(newInspectCmd())
	root.AddCommand(newStatCmd())
	return root
}

func newInspectCmd() *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "inspect <path> <table> <id>",
		Short: "Print a record's fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, table, id := args[0], args[1], args[2]
			db, err := spookydb.Open(path, spookydb.Options{ReadOnly: true})
			if err != nil {
				return err
			}
			defer db.Close()

			if len(fields) == 0 {
				buf, ok, err := db.GetRecordBytes(table, id)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("record %s:%s not found", table, id)
				}
				fmt.Printf("%s:%s: %d bytes\n", table, id, len(buf))
				return nil
			}

			values, ok, err := db.GetRecordTyped(table, id, fields)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("record %s:%s not found", table, id)
			}
			for _, name := range fields {
				v, present := values[name]
				if !present {
					fmt.Printf("%s: <absent>\n", name)
					continue
				}
				fmt.Printf("%s: %s\n", name, v.String())
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&fields, "field", "f", nil, "field name to print (repeatable)")
	return cmd
}

func newStatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stat <path>",
		Short: "Print table sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := spookydb.Open(args[0], spookydb.Options{ReadOnly: true})
			if err != nil {
				return err
			}
			defer db.Close()

			names := db.TableNames()
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s\t%d\n", name, db.TableLen(name))
			}
			return nil
		},
	}
	return cmd
}
