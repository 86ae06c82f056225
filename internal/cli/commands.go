package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/secrets"
	"github.com/dmitrijs2005/fintrack/internal/services"
)

const defaultListLimit = 20

func usage(text string) error {
	return fmt.Errorf("usage: %s: %w", text, common.ErrValidation)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q: %w", s, common.ErrValidation)
	}
	return id, nil
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func (a *App) printTransactions(txs []models.Transaction) error {
	if len(txs) == 0 {
		fmt.Fprintln(a.out, "No transactions.")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, t := range txs {
		category := t.CategoryName
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.TransactionDate.Format(common.DateLayout),
			t.Type, t.SignedAmount().StringFixed(2), category, t.Description)
	}
	return w.Flush()
}

// Login prompts for the bank API credentials and exchanges them once to
// prove they work.
func (a *App) Login(ctx context.Context) error {
	clientID, err := getSimpleText(a.reader, "Client ID", a.out)
	if err != nil {
		return err
	}
	secret, err := GetSecret(a.out, "Client secret")
	if err != nil {
		return err
	}
	apiKey, err := GetSecret(a.out, "API key")
	if err != nil {
		return err
	}

	creds := models.Credentials{ClientID: clientID, ClientSecret: secret, APIKey: apiKey}
	if err := a.auth.Login(ctx, creds); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged in.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	loggedIn, err := a.auth.LoggedIn(ctx)
	if err != nil {
		return err
	}
	last, err := a.sync.LastSync(ctx)
	if err != nil {
		return err
	}
	count, err := a.transactions.Count(ctx)
	if err != nil {
		return err
	}

	lastText := "never"
	if last != nil {
		lastText = last.Local().Format(time.RFC1123)
	}
	fmt.Fprintf(a.out, "Logged in: %t\nSync: %s\nLast sync: %s\nTransactions: %d\n",
		loggedIn, a.sync.State(), lastText, count)
	return nil
}

// Sync runs one sync for every account, or for the account given.
func (a *App) Sync(ctx context.Context, args []string) error {
	var req services.SyncRequest
	if len(args) > 0 {
		req.AccountID = args[0]
	}

	out := a.sync.Sync(ctx, req)
	if services.IsInProgress(out) {
		return common.ErrSyncInProgress
	}
	if !out.Success {
		return fmt.Errorf("sync failed: %s", out.Error)
	}

	fmt.Fprintf(a.out, "Synced: %d stored, %d rejected", out.Accepted, out.Rejected)
	if out.WriteFailures > 0 {
		fmt.Fprintf(a.out, ", %d failed to write", out.WriteFailures)
	}
	fmt.Fprintf(a.out, ". %d transactions in total.\n", out.Total)
	return nil
}

func (a *App) Accounts(ctx context.Context) error {
	accounts, err := a.bank.Accounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts.")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tPRODUCT")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.AccountID, acc.AccountNumber, acc.AccountName, acc.ProductName)
	}
	return w.Flush()
}

func (a *App) Balance(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("balance <accountId>")
	}
	b, err := a.bank.Balance(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Current: %s %s\nAvailable: %s %s\n",
		b.CurrentBalance.StringFixed(2), b.Currency, b.AvailableBalance.StringFixed(2), b.Currency)
	return nil
}

func (a *App) List(ctx context.Context, args []string) error {
	limit, offset := defaultListLimit, 0
	var err error
	if len(args) > 0 {
		if limit, err = strconv.Atoi(args[0]); err != nil {
			return usage("list [limit] [offset]")
		}
	}
	if len(args) > 1 {
		if offset, err = strconv.Atoi(args[1]); err != nil {
			return usage("list [limit] [offset]")
		}
	}

	txs, err := a.transactions.List(ctx, limit, offset)
	if err != nil {
		return err
	}
	return a.printTransactions(txs)
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("search <text>")
	}
	txs, err := a.transactions.Search(ctx, strings.Join(args, " "), defaultListLimit)
	if err != nil {
		return err
	}
	return a.printTransactions(txs)
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	t, err := a.transactions.Get(ctx, id)
	if err != nil {
		return err
	}

	category := t.CategoryName
	if category == "" {
		category = models.UncategorizedName
	}
	w := a.table()
	fmt.Fprintf(w, "ID:\t%d\n", t.ID)
	fmt.Fprintf(w, "Account:\t%s\n", t.AccountID)
	fmt.Fprintf(w, "Date:\t%s\n", t.TransactionDate.Format(common.DateLayout))
	fmt.Fprintf(w, "Description:\t%s\n", t.Description)
	fmt.Fprintf(w, "Direction:\t%s\n", t.Type)
	fmt.Fprintf(w, "Amount:\t%s\n", t.Amount.StringFixed(2))
	fmt.Fprintf(w, "Type:\t%s\n", t.TransactionType)
	fmt.Fprintf(w, "Status:\t%s\n", t.Status)
	fmt.Fprintf(w, "Running balance:\t%s\n", t.RunningBalance.StringFixed(2))
	fmt.Fprintf(w, "Category:\t%s\n", category)
	return w.Flush()
}

// findCategory resolves a category by case-insensitive name.
func (a *App) findCategory(ctx context.Context, name string) (*models.Category, error) {
	cats, err := a.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range cats {
		if strings.EqualFold(cats[i].Name, name) {
			return &cats[i], nil
		}
	}
	return nil, fmt.Errorf("category %q: %w", name, common.ErrNotFound)
}

func (a *App) Categorize(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage(`categorize <id> <category|->`)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var categoryID *int64
	if name := strings.Join(args[1:], " "); name != "-" {
		c, err := a.findCategory(ctx, name)
		if err != nil {
			return err
		}
		categoryID = &c.ID
	}

	if err := a.transactions.SetCategory(ctx, id, categoryID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated.")
	return nil
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.categories.List(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tICON")
	for _, c := range cats {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Color, c.Icon)
	}
	return w.Flush()
}

func (a *App) AddCategory(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 3 {
		return usage("addcat <name> [color] [icon]")
	}
	var color, icon string
	if len(args) > 1 {
		color = args[1]
	}
	if len(args) > 2 {
		icon = args[2]
	}

	c, err := a.categories.Create(ctx, args[0], color, icon)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created category %q (#%d).\n", c.Name, c.ID)
	return nil
}

func (a *App) DeleteCategory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("delcat <name>")
	}
	c, err := a.findCategory(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.categories.Delete(ctx, c.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted category %q.\n", c.Name)
	return nil
}

// Totals prints signed category totals and the income/spending split, for
// the current pay period or, with "all", for all time.
func (a *App) Totals(ctx context.Context, args []string) error {
	window := a.analytics.CurrentPayPeriod()
	label := fmt.Sprintf("Pay period %s to %s", window.From.Format(common.DateLayout), window.To.Format(common.DateLayout))
	if len(args) > 0 && args[0] == "all" {
		window, label = models.DateRange{}, "All time"
	}

	totals, err := a.analytics.CategoryTotals(ctx, window)
	if err != nil {
		return err
	}
	split, err := a.analytics.IncomeAndSpending(ctx, window)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, label)
	w := a.table()
	fmt.Fprintln(w, "CATEGORY\tTOTAL\tCOUNT")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%s\t%d\n", t.Name, t.Total.StringFixed(2), t.Count)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Income: %s (%d)\nSpending: %s (%d)\n",
		split.Income.StringFixed(2), split.CreditCount, split.Spending.StringFixed(2), split.DebitCount)
	return nil
}

func (a *App) Summary(ctx context.Context) error {
	text, err := a.insight.Build(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, text)
	return nil
}

func (a *App) chatService(ctx context.Context) (services.ChatService, error) {
	if a.chat != nil {
		return a.chat, nil
	}
	chat, err := a.newChat(ctx)
	if err != nil {
		return nil, err
	}
	a.chat = chat
	return chat, nil
}

func (a *App) Ask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("ask <question>")
	}
	chat, err := a.chatService(ctx)
	if err != nil {
		return err
	}
	reply, err := chat.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, reply)
	return nil
}

// SetKey stores the LLM API key. The next question builds a new client.
func (a *App) SetKey(ctx context.Context) error {
	key, err := GetSecret(a.out, "LLM API key")
	if err != nil {
		return err
	}
	if err := a.secrets.Put(ctx, secrets.KeyLLMAPIKey, key); err != nil {
		return err
	}
	a.chat = nil
	fmt.Fprintln(a.out, "Key saved.")
	return nil
}

func (a *App) ResetChat(context.Context) error {
	if a.chat != nil {
		a.chat.Reset()
	}
	fmt.Fprintln(a.out, "Conversation cleared.")
	return nil
}

// Clear deletes every stored transaction after confirmation.
func (a *App) Clear(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Delete all transactions?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	n, err := a.transactions.ClearAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %d transactions.\n", n)
	return nil
}

var _ execIface = (*App)(nil)

// hint suggests a next step for errors the user can act on.
func hint(err error) string {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated), errors.Is(err, common.ErrUnauthorized):
		return "run login to store valid bank credentials"
	case errors.Is(err, common.ErrUnavailable):
		return "the bank API is unreachable, try again later"
	case errors.Is(err, common.ErrSyncInProgress):
		return "wait for the running sync to finish"
	}
	return ""
}
