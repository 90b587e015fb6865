package sim

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type namedHandler struct {
	*MockHandler
}

func (namedHandler) Name() string {
	return "Cell[0,0]"
}

var _ = Describe("EventLogger", func() {
	var (
		mockCtrl *gomock.Controller
		buf      *bytes.Buffer
		logger   *EventLogger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should log events before they are handled", func() {
		handler := namedHandler{NewMockHandler(mockCtrl)}
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(VTime(2)).AnyTimes()
		evt.EXPECT().Handler().Return(handler).AnyTimes()

		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: evt})
		logger.Func(HookCtx{Pos: HookPosAfterEvent, Item: evt})

		Expect(buf.String()).To(Equal(
			"2.0000000000, *sim.MockEvent -> Cell[0,0]\n"))
	})

	It("should skip items that are not events", func() {
		logger.Func(HookCtx{Pos: HookPosBeforeEvent, Item: "not an event"})

		Expect(buf.String()).To(BeEmpty())
	})
})
