package main

import (
	"fmt"
	"os"

	"werdiff/internal/config"
)

func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}
	fmt.Printf("config=%s\n", cfg.Paths.ConfigPath)
	fmt.Printf("server.addr=%s metrics=%v output=%s workers=%d\n", cfg.Server.Addr, cfg.Metrics.Enabled, cfg.Output.Format, cfg.Batch.Workers)
	fmt.Printf("tokenize lowercase=%v strip_punct=%v nfc=%v\n", cfg.Tokenize.Lowercase, cfg.Tokenize.StripPunct, cfg.Tokenize.NFC)
	fmt.Printf("recognizer=%q hooks=%d\n", cfg.Recognizer.Command, len(cfg.Hooks))
	for i, h := range cfg.Hooks {
		fmt.Printf("hook %d min_wer=%.2f cmd=%s args=%v\n", i, h.MinWER, h.Command, h.Args)
	}
}
