package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/muurk/bleradar/internal/services"
	"github.com/muurk/bleradar/internal/ui"
	"github.com/muurk/bleradar/internal/vendor"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve vendors and service identifiers offline",
	Long: `Resolve a hardware address or service identifier with the same reference
tables a scan uses. No radio is needed.`,
}

var lookupVendorCmd = &cobra.Command{
	Use:   "vendor <address>",
	Short: "Name the vendor of a hardware address",
	Example: `  bleradar lookup vendor AC:23:3F:01:02:03
  bleradar lookup vendor ac233f010203 --vendors ./oui.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runLookupVendor,
}

var lookupServiceCmd = &cobra.Command{
	Use:   "service <uuid>",
	Short: "Describe a service identifier",
	Example: `  bleradar lookup service 180f
  bleradar lookup service 0000180f-0000-1000-8000-00805f9b34fb --services ./services`,
	Args: cobra.ExactArgs(1),
	RunE: runLookupService,
}

func init() {
	for _, c := range []*cobra.Command{lookupVendorCmd, lookupServiceCmd} {
		c.Flags().StringVar(&vendorsPath, "vendors", "", "Vendor prefix dataset file")
		c.Flags().StringVar(&servicesDir, "services", "", "Directory of service description files")
		lookupCmd.AddCommand(c)
	}
}

func lookupResolvers(cmd *cobra.Command) (vendor.Resolver, services.Resolver, error) {
	if cmd.Flags().Changed("vendors") {
		cfg.Datasets.Vendors = vendorsPath
	}
	if cmd.Flags().Changed("services") {
		cfg.Datasets.Services = servicesDir
	}
	return loadResolvers(cfg)
}

func runLookupVendor(cmd *cobra.Command, args []string) error {
	vendors, _, err := lookupResolvers(cmd)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	address := args[0]
	prefix, ok := vendor.Prefix(address)
	if !ok {
		return fmt.Errorf("%q is not a hardware address", address)
	}

	name, ok := vendors.Lookup(address)
	if !ok {
		printer.PrintFailure("Vendor not found", fmt.Errorf("no vendor registered for prefix %s", prefix))
		return nil
	}
	printer.PrintSuccess("Vendor found", map[string]string{
		"Address": address,
		"Prefix":  prefix,
		"Vendor":  name,
	})
	return nil
}

func runLookupService(cmd *cobra.Command, args []string) error {
	_, svc, err := lookupResolvers(cmd)
	if err != nil {
		return err
	}

	printer := ui.NewPrinter(cmd.OutOrStdout())
	id := services.ShortID(args[0])
	desc, ok := svc.Lookup(id)
	if !ok {
		printer.PrintFailure("Service not found", fmt.Errorf("no description for %s", id))
		return nil
	}
	printer.PrintSuccess("Service found", map[string]string{
		"Identifier":  id,
		"Description": desc,
	})
	return nil
}
