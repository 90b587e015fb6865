package celldevs_test

import (
	"bytes"
	"errors"
	"log"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/epicell/celldevs"
	"github.com/sarchlab/epicell/sim"
)

// spreadModel takes the largest state of the neighbors, weighted by a 0/1
// vicinity.
type spreadModel struct {
	calls []sim.VTime
	fail  bool
}

func (m *spreadModel) LocalComputation(
	now sim.VTime,
	current int,
	neighbors []celldevs.Neighbor[int, int],
) (int, error) {
	m.calls = append(m.calls, now)

	if m.fail {
		return 0, errors.New("broken model")
	}

	next := current
	for _, n := range neighbors {
		if n.Vicinity > 0 && n.State > next {
			next = n.State
		}
	}

	return next, nil
}

func (m *spreadModel) OutputDelay(int) sim.VTime {
	return 1
}

func (m *spreadModel) Equal(a, b int) bool {
	return a == b
}

func (m *spreadModel) Format(s int) string {
	return strconv.Itoa(s)
}

type changeCollector struct {
	changes []celldevs.StateChange[int]
}

func (c *changeCollector) Func(ctx sim.HookCtx) {
	if ctx.Pos != celldevs.HookPosStateChange {
		return
	}

	c.changes = append(c.changes, ctx.Item.(celldevs.StateChange[int]))
}

var _ = Describe("Space", func() {
	var (
		engine *sim.SerialEngine
		model  *spreadModel
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		model = &spreadModel{}
	})

	line := func(space *celldevs.Space[int, int], values ...int) {
		for i, v := range values {
			space.AddCell(celldevs.CellID(strconv.Itoa(i)), v, model)
		}

		for i := range values {
			id := celldevs.CellID(strconv.Itoa(i))
			if i > 0 {
				space.Connect(id, celldevs.CellID(strconv.Itoa(i-1)), 1)
			}

			if i < len(values)-1 {
				space.Connect(id, celldevs.CellID(strconv.Itoa(i+1)), 1)
			}
		}
	}

	It("should spread states one output delay per hop", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		line(space, 5, 0, 0)
		collector := &changeCollector{}
		space.AcceptHook(collector)

		space.Start()
		Expect(engine.Run()).To(Succeed())

		for _, c := range space.Cells() {
			Expect(c.State()).To(Equal(5))
		}

		transitions := collector.changes[3:]
		Expect(transitions).To(HaveLen(2))
		Expect(transitions[0].Cell).To(Equal(celldevs.CellID("1")))
		Expect(transitions[0].Time).To(Equal(sim.VTime(0)))
		Expect(transitions[0].Previous).To(Equal(0))
		Expect(transitions[0].Current).To(Equal(5))
		Expect(transitions[1].Cell).To(Equal(celldevs.CellID("2")))
		Expect(transitions[1].Time).To(Equal(sim.VTime(1)))
	})

	It("should report the initial states", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		line(space, 5, 0)
		collector := &changeCollector{}
		space.AcceptHook(collector)

		space.Start()

		Expect(collector.changes).To(HaveLen(2))
		Expect(collector.changes[0].Initial).To(BeTrue())
		Expect(collector.changes[0].Text).To(Equal("5"))
	})

	It("should compute once per instant", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		space.AddCell("center", 0, model)
		for _, id := range []celldevs.CellID{"a", "b", "c"} {
			space.AddCell(id, 0, &spreadModel{})
			space.Connect("center", id, 1)
		}

		space.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(model.calls).To(Equal([]sim.VTime{0}))
		Expect(space.Cell("center").Stats().Computations).To(Equal(uint64(1)))
		Expect(space.Cell("center").Stats().Transitions).To(BeZero())
	})

	It("should let cells observe themselves", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		space.AddCell("self", 3, model)
		space.Connect("self", "self", 1)

		space.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(space.Cell("self").Neighbors()).To(Equal([]celldevs.CellID{"self"}))
		Expect(model.calls).To(Equal([]sim.VTime{0}))
	})

	It("should stop publishing after the end time", func() {
		space := celldevs.NewSpace[int, int](engine, 0.5)
		line(space, 5, 0, 0)

		space.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(space.Cell("1").State()).To(Equal(5))
		Expect(space.Cell("2").State()).To(Equal(0))
		Expect(space.Cell("1").Stats().Dropped).To(Equal(uint64(1)))
	})

	It("should keep the last view of every neighbor", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		line(space, 5, 0, 0)

		space.Start()
		Expect(engine.Run()).To(Succeed())

		s, ok := space.Cell("2").NeighborState("1")
		Expect(ok).To(BeTrue())
		Expect(s).To(Equal(5))

		v, ok := space.Cell("2").Vicinity("1")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1))
	})

	It("should replace the vicinity when connecting twice", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		line(space, 5, 0)
		space.Connect("1", "0", 0)

		space.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(space.Cell("1").Neighbors()).To(HaveLen(1))
		Expect(space.Cell("1").State()).To(Equal(0))
	})

	It("should abort the step of a failing cell", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		model.fail = true
		line(space, 5, 0)

		space.Start()
		err := engine.Run()

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("broken model"))
		Expect(space.Cell("0").State()).To(Equal(5))
		Expect(space.Cell("1").State()).To(Equal(0))
	})

	It("should refuse duplicated cells", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		space.AddCell("a", 0, model)

		Expect(func() { space.AddCell("a", 0, model) }).To(Panic())
	})

	It("should refuse edges towards unknown cells", func() {
		space := celldevs.NewSpace[int, int](engine, 0)
		space.AddCell("a", 0, model)

		Expect(func() { space.Connect("a", "b", 1) }).To(Panic())
	})

	It("should log state changes", func() {
		buf := new(bytes.Buffer)
		space := celldevs.NewSpace[int, int](engine, 0)
		line(space, 5, 0)
		space.AcceptHook(celldevs.NewStateLogger(log.New(buf, "", 0)))

		space.Start()
		Expect(engine.Run()).To(Succeed())

		Expect(buf.String()).To(Equal(
			"0.0000000000, 0, 5\n" +
				"0.0000000000, 1, 0\n" +
				"0.0000000000, 1, 5\n"))
	})
})
