package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pterm/pterm"

	"github.com/radieske/texas-odds/internal/cards"
	"github.com/radieske/texas-odds/internal/odds"
	"github.com/radieske/texas-odds/internal/odds-service/calc"
	"github.com/radieske/texas-odds/internal/odds-service/engine"
	"github.com/radieske/texas-odds/internal/shared/config"
	"github.com/radieske/texas-odds/internal/shared/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	players := flag.Int("n", calc.DefaultPlayers, "number of players at the table")
	engineURL := flag.String("engine", cfg.EngineURL, "odds engine base URL")
	timeout := flag.Duration("timeout", cfg.EngineTimeout, "engine request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: texas-odds [flags] <hole1> <hole2> [community...]\n")
		fmt.Fprintf(flag.CommandLine.Output(), "cards: suit (s,h,d,c or 1-4) + rank (A,K,Q,J,T or 1-13), ex: sA hK d10\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	log, err := logger.New("texas-odds", cfg.Env, level)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := calc.New(log, engine.New(*engineURL, *timeout), nil, nil)
	svc.Source = "texas-odds"

	spinner, _ := pterm.DefaultSpinner.Start("Simulating hands ...")
	res, err := svc.Calc(ctx, buildRequest(*players, flag.Args()))
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}
	spinner.Success("Done")

	render(res)
}

// buildRequest aceita as cartas soltas ou agrupadas entre aspas:
// os dois primeiros tokens são as hole cards, o resto é o board
func buildRequest(players int, args []string) calc.Request {
	tokens := strings.Fields(strings.Join(args, " "))
	req := calc.Request{Players: players}
	if len(tokens) < 2 {
		req.HoleCards = strings.Join(tokens, " ")
		return req
	}
	req.HoleCards = strings.Join(tokens[:2], " ")
	req.CommunityCards = strings.Join(tokens[2:], " ")
	return req
}

func stageLine(res calc.Result) string {
	board := "-"
	if len(res.CommunityCards) > 0 {
		board = joinCards(res.CommunityCards)
	}
	return fmt.Sprintf("players: %d, hole: %s, community: %s", res.Players, joinCards(res.HoleCards), board)
}

func joinCards(cs []cards.Card) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// handTable monta a tabela de tipos de mão em ordem de força
func handTable(disp odds.DisplayOdds) pterm.TableData {
	data := pterm.TableData{{"Hand", "Rate"}}
	for _, h := range odds.SortedHandTypes(disp.HandTypeRates) {
		data = append(data, []string{h, disp.HandTypeRates[h]})
	}
	return data
}

func render(res calc.Result) {
	pterm.DefaultSection.Println("Stage")
	pterm.Info.Println(stageLine(res))
	if res.MadeHand != "" {
		pterm.Info.Printfln("made hand: %s", res.MadeHand)
	}

	pterm.DefaultSection.Println("Odds")
	pterm.Printfln("win: %s, tie: %s", odds.FormatPercent(res.Odds.Win), odds.FormatPercent(res.Odds.Tie))
	if len(res.OutOfRange) > 0 {
		pterm.Warning.Printfln("engine returned rates outside [0,1]: %s", strings.Join(res.OutOfRange, ", "))
	}

	if len(res.Odds.HandTypeRates) == 0 {
		return
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(handTable(res.Odds)).Render()
}
