package cpn_test

import (
	"fmt"
	"github.com/jt05610/cpn"
)

// ExampleNet demonstrates building a net with the arc builders, checking which
// transitions are enabled, and firing one of them.
func ExampleNet() {
	coin := cpn.Color("🪙")

	// coins are inserted into the slot and end up in the cash box
	slot := cpn.NewPlace("Coin slot")
	box := cpn.NewPlace("Cash box")
	insert := cpn.NewTransition("Insert coin", cpn.WithFunc(coin.Passthrough(1)))

	in, err := slot.Out(cpn.Weight(coin)).To(insert)
	if err != nil {
		panic(err)
	}
	out, err := insert.Out(cpn.Weight(coin)).Annotate("deposit").To(box)
	if err != nil {
		panic(err)
	}
	net, err := cpn.New(in, out)
	if err != nil {
		panic(err)
	}

	penny := cpn.NewToken(cpn.WithColor(coin), cpn.WithTokenName("penny"))
	m := cpn.NewMarking(map[*cpn.Place][]*cpn.Token{slot: {penny}})

	enabled, err := net.EnabledTransitions(m)
	if err != nil {
		panic(err)
	}
	fmt.Println(enabled)

	m, err = net.MarkingAfterTransition(m, insert)
	if err != nil {
		panic(err)
	}
	fmt.Println(m)
	fmt.Println(out)

	enabled, _ = net.EnabledTransitions(m)
	fmt.Println(len(enabled))
	// Output:
	// [□ Insert coin]
	// {⬭ Cash box: {🪙 penny}}
	// □ Insert coin 🪙 deposit → ⬭ Cash box
	// 0
}
