package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/export"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/extract"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/serialize"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		in       = flag.String("in", "", "document to extract (.json dump or .xlsx, required)")
		typ      = flag.String("type", cfg.Extract.ReportType, "report type ("+strings.Join(constants.FamiliesAsStrings(), ", ")+"); empty detects from the file name")
		out      = flag.String("out", "", "write the JSON result here instead of stdout")
		xlsx     = flag.String("xlsx", "", "also write an XLSX workbook of the result")
		validate = flag.Bool("validate", false, "check the result against the JSON schema")
		rulesDir = flag.String("rules", cfg.Extract.RulesDir, "directory of family rule files (defaults to the embedded set)")
		schema   = flag.Bool("schema", false, "print the result JSON schema and exit")
	)
	flag.Parse()

	cfg.Extract.ReportType = *typ
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)

	if *schema {
		b, err := json.MarshalIndent(serialize.Schema(), "", "  ")
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}
	if *in == "" {
		printError("Error: -in is required\n")
		flag.Usage()
		os.Exit(2)
	}

	reg, err := loadRules(*rulesDir)
	if err != nil {
		logger.Error("rules.load.failed", "dir", *rulesDir, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	doc, err := document.Open(ctx, *in)
	if err != nil {
		logger.Error("document.open.failed", "path", *in, "error", err)
		os.Exit(1)
	}

	d := extract.NewDispatcher(reg, logger)
	var rep entity.Report
	if *typ == "" {
		rep, err = d.ExtractAuto(doc)
	} else {
		family, _ := constants.ParseFamily(*typ)
		rep, err = d.Extract(doc, family)
	}
	if err != nil {
		logger.Error("extract.failed", "path", *in, "code", common.ErrorCode(err), "error", err)
		os.Exit(1)
	}

	b, err := serialize.JSON(rep)
	if err != nil {
		logger.Error("serialize.failed", "error", err)
		os.Exit(1)
	}
	if *validate {
		if err := serialize.ValidateJSON(b); err != nil {
			logger.Error("validate.failed", "error", err)
			os.Exit(1)
		}
	}

	if *out == "" {
		fmt.Println(string(b))
	} else if err := os.WriteFile(*out, append(b, '\n'), 0o644); err != nil {
		logger.Error("write.failed", "path", *out, "error", err)
		os.Exit(1)
	}

	if *xlsx != "" {
		wb, err := export.NewService(logger).ResultXLSX(rep)
		if err != nil {
			logger.Error("export.failed", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*xlsx, wb, 0o644); err != nil {
			logger.Error("write.failed", "path", *xlsx, "error", err)
			os.Exit(1)
		}
	}

	if n := len(rep.DiagnosticList()); n > 0 {
		printError("%s: %d cell(s) could not be parsed\n", rep.SourceName(), n)
	}
}

func loadRules(dir string) (*rules.Registry, error) {
	if dir == "" {
		return rules.Default()
	}
	return rules.LoadDir(dir)
}
