package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/raywall/fast-service-simulator/pkg/engine"
	"github.com/raywall/fast-service-simulator/pkg/source"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	filePtr := validateCmd.String("file", "", "Caminho do arquivo YAML ou S3/DynamoDB URI")

	if len(os.Args) < 2 {
		fmt.Println("Comandos esperados: validate")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *filePtr == "" {
			fmt.Println("Erro: flag -file é obrigatória")
			os.Exit(1)
		}
		os.Exit(runValidate(context.Background(), *filePtr, os.Stdout))
	default:
		fmt.Println("Comando desconhecido")
		os.Exit(1)
	}
}

// runValidate carrega a configuração, monta os cenários sem publicá-los e imprime o
// relatório. Retorna o código de saída do processo.
func runValidate(ctx context.Context, path string, out io.Writer) int {
	fmt.Fprintf(out, "Analisando configuração: %s ...\n", path)

	// 1. Load (Validação Estrutural)
	cfg, err := engine.Load(ctx, path)
	if err != nil {
		fmt.Fprintf(out, "Erro de Carregamento/Estrutura:\n%v\n", err)
		return 1
	}

	// 2. Analyze (síntese e alcançabilidade dos cenários)
	report, err := engine.Analyze(ctx, cfg, source.NewLoader())
	if err != nil {
		fmt.Fprintf(out, "Erro interno do analisador: %v\n", err)
		return 1
	}

	// Output JSON para integração com pipelines
	if os.Getenv("OUTPUT_FORMAT") == "json" {
		jsonOutput, _ := json.Marshal(report)
		fmt.Fprintln(out, string(jsonOutput))
	} else {
		for _, w := range report.Warnings {
			fmt.Fprintf(out, " ! %s\n", w)
		}
		for _, s := range report.Scenarios {
			fmt.Fprintf(out, " - %s\n", s)
		}
	}

	if !report.Valid {
		fmt.Fprintln(out, "A configuração contém erros:")
		for _, e := range report.Errors {
			fmt.Fprintf(out, " - %s\n", e)
		}
		return 1 // Falha no CI
	}

	fmt.Fprintln(out, "Configuração válida")
	return 0
}
