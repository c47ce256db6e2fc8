package main

import (
	"context"
	"flag"
	"fmt"
	"net/mail"
	"strconv"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/mathstutor/mathstutor-go/core"
	"github.com/mathstutor/mathstutor-go/core/admin"
	"github.com/mathstutor/mathstutor-go/core/lesson"
	"github.com/mathstutor/mathstutor-go/core/payment"
	"github.com/mathstutor/mathstutor-go/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf     *core.Config
	holder   *session.Holder
	lessons  *lesson.Service
	payments *payment.Service
	admin    *admin.Service
	mailer   core.EmailService
	log      core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -username USERNAME                      - sign in; the password is prompted")
	fmt.Println("  logout                                        - sign out and clear stored credentials")
	fmt.Println("  whoami                                        - show the signed-in user")
	fmt.Println("  lessons [-sort VALUE] [-page N] [-subject S]  - list lessons")
	fmt.Println("  search -q QUERY [-subject S]                  - search lessons by text")
	fmt.Println("  register -lesson ID                           - register for a lesson")
	fmt.Println("  pay -lesson ID                                - start checkout for a lesson")
	fmt.Println("  confirm -session ID                           - confirm a finished checkout")
	fmt.Println("  dashboard                                     - show admin counters")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "Username. The password will be prompted next.")

	lessonsCmd := flag.NewFlagSet("lessons", flag.ExitOnError)
	lessonsSort := lessonsCmd.String("sort", "newest", "Sort: A-Z, Z-A, price_low, price_high, newest, oldest, location, capacity")
	lessonsPage := lessonsCmd.Int("page", 1, "Page number")
	lessonsSubject := lessonsCmd.String("subject", "", "Subject filter")

	searchCmd := flag.NewFlagSet("search", flag.ExitOnError)
	searchQuery := searchCmd.String("q", "", "Search text")
	searchSubject := searchCmd.String("subject", "", "Subject filter")

	registerCmd := flag.NewFlagSet("register", flag.ExitOnError)
	registerLesson := registerCmd.Int("lesson", 0, "Lesson id")

	payCmd := flag.NewFlagSet("pay", flag.ExitOnError)
	payLesson := payCmd.Int("lesson", 0, "Lesson id")

	confirmCmd := flag.NewFlagSet("confirm", flag.ExitOnError)
	confirmSession := confirmCmd.String("session", "", "Checkout session id")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginUname, string(pwd))
	case "logout":
		cli.holder.Logout(ctx)
		fmt.Println("Signed out.")
		return nil
	case "whoami":
		return cli.whoami()
	case "lessons":
		if err := lessonsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listLessons(ctx, *lessonsSort, *lessonsPage, *lessonsSubject)
	case "search":
		if err := searchCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *searchQuery == "" {
			searchCmd.Usage()
			return errHelp
		}
		return cli.search(ctx, *searchQuery, *searchSubject)
	case "register":
		if err := registerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *registerLesson == 0 {
			registerCmd.Usage()
			return errHelp
		}
		return cli.register(ctx, *registerLesson)
	case "pay":
		if err := payCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *payLesson == 0 {
			payCmd.Usage()
			return errHelp
		}
		return cli.pay(ctx, *payLesson)
	case "confirm":
		if err := confirmCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *confirmSession == "" {
			confirmCmd.Usage()
			return errHelp
		}
		return cli.confirm(ctx, *confirmSession)
	case "dashboard":
		return cli.dashboard(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, username, password string) error {
	if err := cli.holder.Login(ctx, username, password); err != nil {
		return err
	}
	usr, _ := cli.holder.User()
	fmt.Printf("Signed in as %s\n", usr.Username)
	return nil
}

func (cli *commandLine) whoami() error {
	usr, ok := cli.holder.User()
	if !ok {
		fmt.Println("Not signed in.")
		return nil
	}
	role := "user"
	if cli.holder.IsSiteAdmin() {
		role = "site admin"
	}
	fmt.Printf("%s <%s> (%s)\n", usr.Username, usr.Email, role)
	return nil
}

func (cli *commandLine) listLessons(ctx context.Context, sortValue string, page int, subject string) error {
	sortBy, order := lesson.SortParamsFromValue(sortValue)
	res, err := cli.lessons.List(ctx, lesson.Filters{
		SortBy:    sortBy,
		SortOrder: order,
		Subject:   subject,
		Page:      page,
		Limit:     20,
	})
	if err != nil {
		return err
	}
	for _, l := range res.Lessons {
		printLesson(l)
	}
	fmt.Printf("Page %d of %d (%d lessons)\n", res.Page, cli.lessons.TotalPages(), res.TotalLessons)
	return nil
}

func (cli *commandLine) search(ctx context.Context, query, subject string) error {
	results, err := cli.lessons.Search(ctx, query, lesson.SearchOptions{Subject: subject})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No lessons matched.")
		return nil
	}
	for _, l := range results {
		printLesson(l)
	}
	return nil
}

func (cli *commandLine) register(ctx context.Context, lessonID int) error {
	usr, ok := cli.holder.User()
	if !ok {
		return errors.New("sign in first")
	}
	reg, err := cli.lessons.Register(ctx, lessonID, usr.ID)
	if err != nil {
		return err
	}
	lsn, err := cli.lessons.Get(ctx, lessonID)
	if err == nil {
		cli.mailer.SendMessages(&core.EmailMessage{
			To:          []mail.Address{{Name: usr.Username, Address: usr.Email}},
			Subject:     "Registration confirmed: " + lsn.Title,
			TextContent: fmt.Sprintf("You are registered for %q starting %s.", lsn.Title, lsn.StartTime.Format("Mon 2 Jan 15:04")),
		})
	} else {
		cli.log.Warn("fetching lesson for confirmation email", err)
	}
	fmt.Printf("Registered (registration %d).\n", reg.ID)
	return nil
}

func (cli *commandLine) pay(ctx context.Context, lessonID int) error {
	usr, ok := cli.holder.User()
	if !ok {
		return errors.New("sign in first")
	}
	sess, err := cli.payments.BeginCheckout(ctx, lessonID, usr.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Open this URL to pay:\n%s\n", sess.URL)
	fmt.Printf("Then run: mathstutor confirm -session %s\n", sess.SessionID)
	return nil
}

func (cli *commandLine) confirm(ctx context.Context, sessionID string) error {
	usr, ok := cli.holder.User()
	if !ok {
		return errors.New("sign in first")
	}
	res, err := cli.payments.ConfirmReturn(ctx, sessionID, usr.ID)
	if err != nil {
		return err
	}
	if !res.Enrolled {
		fmt.Printf("Payment not completed (status: %s).\n", res.Status)
		return nil
	}
	fmt.Printf("Payment confirmed; you are enrolled in lesson %d.\n", res.LessonID)
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	if !cli.holder.IsSiteAdmin() {
		return errors.New("admin access required")
	}
	if err := cli.admin.Refresh(ctx); err != nil {
		return err
	}
	d := cli.admin.Dashboard()
	fmt.Printf("Users: %d\nGroups: %d\nLessons: %d (%d active)\nTickets: %d\n",
		d.TotalUsers, d.TotalGroups, d.TotalLessons, d.ActiveLessons, d.TotalTickets)
	return nil
}

func printLesson(l lesson.Lesson) {
	price := "free"
	if l.Price.Valid && l.Price.Float64 > 0 {
		price = strconv.FormatFloat(l.Price.Float64, 'f', 2, 64)
	}
	fmt.Printf("#%-4d %-40s %s  %s  %s\n",
		l.ID, l.Title, l.StartTime.Format("2006-01-02 15:04"), l.Subject, price)
}
