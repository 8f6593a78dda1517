// Command bloomdemo is a small Bubbletea + Lipgloss terminal program
// that drives a bloom.Instance through its reactive lifecycle and
// shows the template compiler's static/dynamic split for the strings
// it renders. It is the in-scope stand-in for the explicitly
// out-of-scope `$mount`/virtual-DOM-patch glue: nothing here executes
// a compiled template's expressions, since that is a code-generation
// concern this module does not implement.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bloomui/bloom/internal/config"
	"github.com/bloomui/bloom/internal/metrics"
	"github.com/bloomui/bloom/internal/obs"
	"github.com/bloomui/bloom/pkg/bloom"
	"github.com/bloomui/bloom/pkg/bloom/compiler"
)

const counterTemplate = `<div class="counter">` +
	`<p>Count: {{ count }}</p>` +
	`<p>Doubled: {{ doubled | label('x2') }}</p>` +
	`</div>`

func counterOptions() *bloom.Options {
	return &bloom.Options{
		Name: "Counter",
		Data: func(vm *bloom.Instance) map[string]any {
			return map[string]any{"count": 0}
		},
		Computed: map[string]bloom.ComputedDef{
			"doubled": {Get: func(vm *bloom.Instance) any {
				v, _ := vm.Get("count")
				return v.(int) * 2
			}},
		},
		Methods: map[string]bloom.MethodFunc{
			"increment": func(vm *bloom.Instance, args ...any) any {
				v, _ := vm.Get("count")
				vm.Set("count", v.(int)+1)
				return nil
			},
			"decrement": func(vm *bloom.Instance, args ...any) any {
				v, _ := vm.Get("count")
				if v.(int) > 0 {
					vm.Set("count", v.(int)-1)
				}
				return nil
			},
			"reset": func(vm *bloom.Instance, args ...any) any {
				vm.Set("count", 0)
				return nil
			},
		},
	}
}

// model wraps a bloom.Instance plus the compiled template it displays
// a static/dynamic breakdown of, driving both through Bubbletea's
// Init/Update/View loop.
type model struct {
	vm       *bloom.Instance
	compiled *compiler.CompiledTemplate
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.vm.Destroy()
			return m, tea.Quit
		case "up", "k", "+":
			call(m.vm, "increment")
		case "down", "j", "-":
			call(m.vm, "decrement")
		case "r":
			call(m.vm, "reset")
		}
		bloom.Flush()
	}
	return m, nil
}

func call(vm *bloom.Instance, method string) {
	v, ok := vm.Get(method)
	if !ok {
		return
	}
	if fn, ok := v.(bloom.MethodFunc); ok {
		fn(vm)
	}
}

func (m model) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	counterStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).
		Padding(1, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	astStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("170")).
		Padding(1, 2).Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("99"))
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)

	count, _ := m.vm.Get("count")
	doubled, _ := m.vm.Get("doubled")

	title := titleStyle.Render("bloom demo: reactive counter")
	counter := counterStyle.Render(fmt.Sprintf("Count: %v\nDoubled: %v", count, doubled))

	var events string
	for _, ev := range m.compiled.Events {
		switch ev.Kind {
		case "start":
			events += fmt.Sprintf("start <%s>\n", ev.Tag)
		case "chars":
			if ev.Expression != "" {
				events += fmt.Sprintf("text  %q -> %s\n", ev.Text, ev.Expression)
			} else {
				events += fmt.Sprintf("text  %q\n", ev.Text)
			}
		case "end":
			events += fmt.Sprintf("end   </%s>\n", ev.Tag)
		}
	}
	ast := astStyle.Render("compiled events:\n" + events)

	help := helpStyle.Render("up/k/+ increment - down/j/- decrement - r reset - q quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s\n\n%s\n", title, counter, ast, help)
}

func main() {
	configPath := flag.String("config", "", "path to a bloom.yaml config file")
	usePrometheus := flag.Bool("prometheus", false, "use the Prometheus metrics backend instead of noop")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bloomdemo: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *usePrometheus {
		cfg = config.Apply(cfg, config.WithMetricsBackend("prometheus"))
	}
	switch cfg.Metrics.Backend {
	case "prometheus":
		metrics.SetGlobal(metrics.NewPrometheusMetrics(prometheus.NewRegistry()))
	default:
		metrics.SetGlobal(nil)
	}

	bloom.SetErrorReporter(obs.NewConsoleReporter(20))

	cacheDir := cfg.Compiler.CacheDir
	if !cfg.Compiler.CacheEnabled {
		cacheDir = ""
	}
	cache := compiler.NewCache(cacheDir, "bloomdemo")
	compiled := compiler.Compile(cache, counterTemplate, cfg.Compiler.Delimiters)

	vm := bloom.NewInstance(nil, counterOptions(), nil)

	p := tea.NewProgram(model{vm: vm, compiled: compiled})
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bloomdemo: %v\n", err)
		os.Exit(1)
	}
}
