package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests provide a recording stub.
type execIface interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Sync(ctx context.Context, args []string) error
	Accounts(ctx context.Context) error
	Balance(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Categorize(ctx context.Context, args []string) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context, args []string) error
	DeleteCategory(ctx context.Context, args []string) error
	Totals(ctx context.Context, args []string) error
	Summary(ctx context.Context) error
	Ask(ctx context.Context, args []string) error
	SetKey(ctx context.Context) error
	ResetChat(ctx context.Context) error
	Clear(ctx context.Context) error
}

const helpText = `Available commands:
  login                      store bank API credentials
  logout                     forget credentials and token
  status                     last sync and transaction count
  sync [accountId]           pull transactions from the bank
  accounts                   list bank accounts
  balance <accountId>        show an account balance
  list [limit] [offset]      list transactions, newest first
  search <text>              find transactions by description
  show <id>                  show one transaction
  categorize <id> <category> assign a category, "-" clears it
  categories                 list categories
  addcat <name> [color] [icon]
  delcat <name>              delete a category
  totals [all]               category totals for the pay period
  summary                    the context handed to the assistant
  ask <question>             ask the assistant
  setkey                     store the LLM API key
  reset                      forget the conversation
  clear                      delete all transactions
  exit | quit`

// runREPL reads commands line by line from reader and dispatches them to
// a. Command errors are printed and the loop goes on. It returns on EOF or
// on exit/quit.
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	for {
		printFn("fintrack> ")
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpText)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "sync":
			cmdErr = a.Sync(ctx, args)
		case "accounts":
			cmdErr = a.Accounts(ctx)
		case "balance":
			cmdErr = a.Balance(ctx, args)
		case "l", "list":
			cmdErr = a.List(ctx, args)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "show":
			cmdErr = a.Show(ctx, args)
		case "categorize":
			cmdErr = a.Categorize(ctx, args)
		case "categories":
			cmdErr = a.Categories(ctx)
		case "addcat":
			cmdErr = a.AddCategory(ctx, args)
		case "delcat":
			cmdErr = a.DeleteCategory(ctx, args)
		case "totals":
			cmdErr = a.Totals(ctx, args)
		case "summary":
			cmdErr = a.Summary(ctx)
		case "ask":
			cmdErr = a.Ask(ctx, args)
		case "setkey":
			cmdErr = a.SetKey(ctx)
		case "reset":
			cmdErr = a.ResetChat(ctx)
		case "clear":
			cmdErr = a.Clear(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
			if h := hint(cmdErr); h != "" {
				printlnFn("Hint:", h)
			}
		}
		if err != nil {
			return
		}
	}
}
