package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/Blankenship-Daniel/snes-disasm-sub002/disasm"
	"github.com/Blankenship-Daniel/snes-disasm-sub002/mapper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "snesdisasm",
		Short: "Static disassembler for SNES 65C816 cartridge images",
	}

	var maxInstructions int
	var entryFlags []string

	disassembleCmd := &cobra.Command{
		Use:   "disassemble [rom.smc]",
		Short: "Decode a ROM's reachable code and print the instruction stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			entries, err := parseEntryPoints(entryFlags)
			if err != nil {
				return err
			}

			opt := disasm.DefaultOptions()
			opt.EntryPoints = entries
			if maxInstructions > 0 {
				opt.MaxInstructions = maxInstructions
			}

			result, err := disasm.Analyze(data, opt)
			if err != nil {
				return err
			}
			printInstructions(result)
			for _, d := range result.Diagnostics {
				glog.Infof("[%s] %s", d.Kind, d.Message)
			}
			if result.Partial {
				fmt.Fprintln(os.Stderr, "warning: analysis stopped early (instruction limit reached)")
			}
			return nil
		},
	}
	disassembleCmd.Flags().IntVar(&maxInstructions, "max-instructions", 0, "Instruction decode ceiling (0 = default)")
	disassembleCmd.Flags().StringArrayVar(&entryFlags, "entry", nil, "Additional entry point, as bank:offset hex (e.g. 00:8200)")

	infoCmd := &cobra.Command{
		Use:   "info [rom.smc]",
		Short: "Print cartridge header classification without disassembling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			result, err := disasm.Analyze(data, disasm.Options{MaxInstructions: 1})
			if err != nil {
				return err
			}
			printCartridge(result)
			return nil
		},
	}

	rootCmd.AddCommand(disassembleCmd, infoCmd)
	if err := rootCmd.Execute(); err != nil {
		glog.Exitf("snesdisasm: %v", err)
	}
}

func parseEntryPoints(flags []string) ([]uint32, error) {
	var entries []uint32
	for _, f := range flags {
		var bank, offset uint32
		if _, err := fmt.Sscanf(f, "%02x:%04x", &bank, &offset); err != nil {
			return nil, fmt.Errorf("invalid --entry %q: bank:offset hex required", f)
		}
		entries = append(entries, mapper.CpuAddress{Bank: byte(bank), Offset: uint16(offset)}.Long())
	}
	return entries, nil
}

func printInstructions(result *disasm.AnalysisResult) {
	addrs := make([]uint32, 0, len(result.Instructions))
	for a := range result.Instructions {
		addrs = append(addrs, a)
	}
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j-1] > addrs[j]; j-- {
			addrs[j-1], addrs[j] = addrs[j], addrs[j-1]
		}
	}
	for _, addr := range addrs {
		d := result.Instructions[addr]
		label := ""
		if sym, ok := result.Symbols.Lookup(addr); ok {
			label = sym.Name + ":"
		}
		fmt.Printf("%-16s %s  ; %d bytes, %s\n", label, mapper.FromLong(addr).String()+" "+d.Mnemonic, d.TotalBytes, d.AddressingMode)
	}
}

func printCartridge(result *disasm.AnalysisResult) {
	ci := result.Cartridge
	fmt.Printf("Title:    %s\n", ci.Title)
	fmt.Printf("Mapper:   %s\n", ci.Mapper)
	fmt.Printf("ROM size: %d KiB\n", ci.RomSize/1024)
	fmt.Printf("Reset:    %s\n", mapper.CpuAddress{Bank: 0, Offset: ci.ResetVector})
	fmt.Printf("Checksum OK: %v\n", ci.ChecksumOK())
	fmt.Printf("Coprocessor: %s\n", ci.Coprocessor)
}
