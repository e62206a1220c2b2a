package pvis

// Nighttime and daytime algorithm names accepted by the registries. The sets
// are closed; lookups outside them fail before any array data is touched.
const (
	NightMainTwoEq   = "nighttime_pvis_main_two_eq"
	NightMainOneEq   = "nighttime_pvis_main_one_eq"
	NightSimpleTwoEq = "nighttime_pvis_simple_two_eq"
	NightSimpleOneEq = "nighttime_pvis_simple_one_eq"

	VisDisp = "vis_disp_sza"
)

var nightRegistry = map[string]NightFunc{
	NightMainTwoEq:   MainTwoEq,
	NightMainOneEq:   MainOneEq,
	NightSimpleTwoEq: SimpleTwoEq,
	NightSimpleOneEq: SimpleOneEq,
}

var visRegistry = map[string]VisFunc{
	VisDisp: VisDispSZA,
}

// LookupNight resolves a nighttime algorithm name to its implementation.
func LookupNight(name string) (NightFunc, error) {
	fn, ok := nightRegistry[name]
	if !ok {
		return nil, &UnknownFunctionError{Kind: "nighttime", Name: name}
	}
	return fn, nil
}

// LookupVis resolves a daytime visible algorithm name to its implementation.
func LookupVis(name string) (VisFunc, error) {
	fn, ok := visRegistry[name]
	if !ok {
		return nil, &UnknownFunctionError{Kind: "vis", Name: name}
	}
	return fn, nil
}
