package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liyu1981.xyz/device-manager-service/pkg/common"
	"liyu1981.xyz/device-manager-service/pkg/device"
	"liyu1981.xyz/device-manager-service/pkg/registry"
	"liyu1981.xyz/device-manager-service/pkg/store"
)

type cli struct {
	out          io.Writer
	file         string
	capacity     int
	outputFormat string
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	rootCmd := &cobra.Command{
		Use:   "devicectl",
		Short: "Device catalog utility",
		Long: `A standalone utility for inspecting and editing a device catalog file.

Every command loads the catalog, applies one change and writes the whole
catalog back. A change that breaks a device rule leaves the file untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&c.file, "file", common.DefaultStorePath, "Catalog file (.yaml/.yml for YAML)")
	rootCmd.PersistentFlags().IntVar(&c.capacity, "capacity", registry.DefaultCapacity, "Maximum number of devices")

	rootCmd.AddCommand(
		c.listCmd(),
		c.countCmd(),
		c.showCmd(),
		c.addCmd(),
		c.removeCmd(),
		c.renameCmd(),
		c.powerCmd("on", "Turn a device on", func(r *registry.Registry, ctx context.Context, id string, kind device.Kind) error {
			return r.TurnOn(ctx, id, kind)
		}),
		c.powerCmd("off", "Turn a device off", func(r *registry.Registry, ctx context.Context, id string, kind device.Kind) error {
			return r.TurnOff(ctx, id, kind)
		}),
		c.batteryCmd(),
		c.fieldCmd("os", "Set a personal computer's operating system", device.KindPersonalComputer, (*registry.Registry).UpdateOperatingSystem),
		c.fieldCmd("ip", "Set an embedded device's IP address", device.KindEmbeddedDevice, (*registry.Registry).UpdateIpAddress),
		c.fieldCmd("network", "Set an embedded device's network name", device.KindEmbeddedDevice, (*registry.Registry).UpdateNetworkName),
	)

	return rootCmd
}

func (c *cli) store() registry.IStore {
	switch strings.ToLower(filepath.Ext(c.file)) {
	case ".yaml", ".yml":
		return store.NewYAMLStore(c.file)
	}
	return store.NewTextFileStore(c.file)
}

func (c *cli) open(ctx context.Context) (*registry.Registry, error) {
	r := registry.New(c.store(), registry.Opts{Capacity: c.capacity})
	if err := r.Load(ctx); err != nil {
		return nil, err
	}
	common.GetCategoryLogger(common.LoggerNameDeviceCtl, common.LoggerCategoryLoad).
		Info("Catalog opened", zap.String("file", c.file), zap.Int("devices", r.Count()))
	return r, nil
}

func (c *cli) printDevice(r *registry.Registry, id string, kind device.Kind) error {
	d, err := r.Get(id, kind)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, d.String())
	return nil
}

func parseTarget(args []string) (device.Kind, string, error) {
	kind, err := device.ParseKind(args[0])
	if err != nil {
		return "", "", err
	}
	return kind, args[1], nil
}

func (c *cli) listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all devices",
		Example: `  # One line per device
  devicectl list

  # Records as JSON for scripting
  devicectl list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}

			devices := r.GetAll()
			switch c.outputFormat {
			case "json":
				data, err := json.MarshalIndent(common.Mapper(devices, device.ToRecord), "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal JSON: %w", err)
				}
				fmt.Fprintln(c.out, string(data))
			case "line":
				return device.WriteAll(c.out, devices)
			default:
				return fmt.Errorf("unknown format %q", c.outputFormat)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.outputFormat, "format", "line", "Output format (line, json)")
	return cmd
}

func (c *cli) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of devices and the capacity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d/%d\n", r.Count(), r.Capacity())
			return nil
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "show KIND ID",
		Short:   "Show one device",
		Example: `  devicectl show sw 1`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseTarget(args)
			if err != nil {
				return err
			}
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			return c.printDevice(r, id, kind)
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var (
		isOn     bool
		battery  int
		os       string
		ip       string
		network  string
		kindArgs = map[string]device.Kind{
			"sw": device.KindSmartwatch,
			"pc": device.KindPersonalComputer,
			"ed": device.KindEmbeddedDevice,
		}
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a device",
	}

	for use, kind := range kindArgs {
		sub := &cobra.Command{
			Use:   use + " ID NAME",
			Short: "Add a " + kind.String(),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				record := device.Record{Kind: kind, ID: args[0], Name: args[1], IsOn: isOn}
				switch kind {
				case device.KindSmartwatch:
					record.BatteryPercentage = &battery
				case device.KindPersonalComputer:
					record.OperatingSystem = &os
				case device.KindEmbeddedDevice:
					record.IpAddress = &ip
					record.NetworkName = &network
				}

				d, err := device.FromRecord(record)
				if err != nil {
					return err
				}
				r, err := c.open(cmd.Context())
				if err != nil {
					return err
				}
				if err := r.Add(cmd.Context(), d); err != nil {
					return err
				}
				return c.printDevice(r, d.ID(), kind)
			},
		}
		sub.Flags().BoolVar(&isOn, "on", false, "Add the device switched on")

		switch kind {
		case device.KindSmartwatch:
			sub.Flags().IntVar(&battery, "battery", 100, "Battery percentage")
			sub.Example = `  devicectl add sw 1 "Apple Watch" --battery 50 --on`
		case device.KindPersonalComputer:
			sub.Flags().StringVar(&os, "os", "", "Operating system, empty for none")
			sub.Example = `  devicectl add pc 1 Desk --os Linux`
		case device.KindEmbeddedDevice:
			sub.Flags().StringVar(&ip, "ip", "", "IPv4 address")
			sub.Flags().StringVar(&network, "network", "", "Network name")
			_ = sub.MarkFlagRequired("ip")
			_ = sub.MarkFlagRequired("network")
			sub.Example = `  devicectl add ed 1 Pi --ip 10.0.0.1 --network "MD Ltd.Lab"`
		}
		addCmd.AddCommand(sub)
	}

	return addCmd
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove KIND ID",
		Short: "Remove a device",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseTarget(args)
			if err != nil {
				return err
			}
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := r.Remove(cmd.Context(), id, kind); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "removed %s-%s\n", kind.Tag(), id)
			return nil
		},
	}
}

func (c *cli) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename KIND ID NAME",
		Short: "Rename a device",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseTarget(args)
			if err != nil {
				return err
			}
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := r.Rename(cmd.Context(), id, kind, args[2]); err != nil {
				return err
			}
			return c.printDevice(r, id, kind)
		},
	}
}

func (c *cli) powerCmd(use string, short string, op func(*registry.Registry, context.Context, string, device.Kind) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " KIND ID",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseTarget(args)
			if err != nil {
				return err
			}
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := op(r, cmd.Context(), id, kind); err != nil {
				return err
			}
			return c.printDevice(r, id, kind)
		},
	}
}

func (c *cli) batteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "battery ID LEVEL",
		Short:   "Set a smartwatch's battery percentage",
		Example: `  devicectl battery 1 80`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("battery level %q is not a whole number", args[1])
			}
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := r.UpdateBattery(cmd.Context(), args[0], level); err != nil {
				return err
			}
			return c.printDevice(r, args[0], device.KindSmartwatch)
		},
	}
}

func (c *cli) fieldCmd(use string, short string, kind device.Kind, set func(*registry.Registry, context.Context, string, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID VALUE",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := set(r, cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			return c.printDevice(r, args[0], kind)
		},
	}
}
