package money

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseAndArithmetic(t *testing.T) {
	Convey("Given decimal strings", t, func() {
		Convey("When adding values that are inexact in binary floating point", func() {
			sum, err := Add("0.1", "0.2")
			So(err, ShouldBeNil)
			So(sum, ShouldEqual, "0.3")
		})

		Convey("When summing a list", func() {
			sum, err := Sum("1.01", "2.02", "-0.03")
			So(err, ShouldBeNil)
			So(sum, ShouldEqual, "3")
		})

		Convey("When summing nothing", func() {
			sum, err := Sum()
			So(err, ShouldBeNil)
			So(sum, ShouldEqual, "0")
		})

		Convey("When input is malformed", func() {
			_, err := Add("abc", "1")
			So(err, ShouldNotBeNil)

			So(ParseOrZero("abc").IsZero(), ShouldBeTrue)
		})

		Convey("When comparing", func() {
			c, err := Compare("2.50", "2.5")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, 0)

			c, err = Compare("-1", "1")
			So(err, ShouldBeNil)
			So(c, ShouldEqual, -1)

			So(CompareOrDefault("x", "1", 7), ShouldEqual, 7)
		})

		Convey("When negating and taking absolute values", func() {
			n, err := Neg("3.25")
			So(err, ShouldBeNil)
			So(n, ShouldEqual, "-3.25")

			a, err := Abs("-3.25")
			So(err, ShouldBeNil)
			So(a, ShouldEqual, "3.25")

			z, err := IsZero("0.00")
			So(err, ShouldBeNil)
			So(z, ShouldBeTrue)
		})
	})
}

func TestFromAtoms(t *testing.T) {
	Convey("Given atomic unit counts", t, func() {
		Convey("When the value is smaller than one whole unit", func() {
			So(FromAtoms(big.NewInt(5), 2), ShouldEqual, "0.05")
		})

		Convey("When the value is negative", func() {
			So(FromAtoms(big.NewInt(-5), 2), ShouldEqual, "-0.05")
			So(FromAtoms(big.NewInt(-12345), 2), ShouldEqual, "-123.45")
		})

		Convey("When precision is zero", func() {
			So(FromAtoms(big.NewInt(42), 0), ShouldEqual, "42")
		})

		Convey("When atoms is nil", func() {
			So(FromAtoms(nil, 2), ShouldEqual, "0")
		})

		Convey("When the value exceeds 64 bits", func() {
			huge, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
			So(ok, ShouldBeTrue)
			So(FromAtoms(huge, 2), ShouldEqual, "1234567890123456789012345678.90")
		})
	})
}

func TestRatioBelow(t *testing.T) {
	Convey("Given available/limit threshold evaluations", t, func() {
		Convey("When the ratio is under the threshold", func() {
			So(RatioBelow("5", "100", "0.10"), ShouldBeTrue)
		})

		Convey("When the ratio is over the threshold", func() {
			So(RatioBelow("50", "100", "0.10"), ShouldBeFalse)
		})

		Convey("When the ratio equals the threshold exactly", func() {
			So(RatioBelow("10", "100", "0.10"), ShouldBeFalse)
		})

		Convey("When the limit is zero or negative", func() {
			So(RatioBelow("0", "0", "0.10"), ShouldBeTrue)
			So(RatioBelow("5", "-1", "0.10"), ShouldBeTrue)
		})

		Convey("When the limit is malformed", func() {
			So(RatioBelow("5", "garbage", "0.10"), ShouldBeTrue)
		})

		Convey("When the numerator or threshold is malformed", func() {
			So(RatioBelow("garbage", "100", "0.10"), ShouldBeFalse)
			So(RatioBelow("5", "100", "garbage"), ShouldBeFalse)
		})
	})
}

func TestRatio(t *testing.T) {
	Convey("Given exact division", t, func() {
		r, err := Ratio("1", "3")
		So(err, ShouldBeNil)
		So(r, ShouldEqual, "0.3333333333333333")

		_, err = Ratio("1", "0")
		So(err, ShouldNotBeNil)
	})
}

func TestArithmeticProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	asDecimal := func(n int64) string {
		return FromAtoms(big.NewInt(n), 2)
	}

	properties.Property("addition commutes", prop.ForAll(
		func(a, b int64) bool {
			x, y := asDecimal(a), asDecimal(b)
			ab, err1 := Add(x, y)
			ba, err2 := Add(y, x)
			return err1 == nil && err2 == nil && ab == ba
		},
		gen.Int64(), gen.Int64(),
	))

	properties.Property("addition associates", prop.ForAll(
		func(a, b, c int64) bool {
			x, y, z := asDecimal(a), asDecimal(b), asDecimal(c)
			xy, _ := Add(x, y)
			left, err1 := Add(xy, z)
			yz, _ := Add(y, z)
			right, err2 := Add(x, yz)
			return err1 == nil && err2 == nil && left == right
		},
		gen.Int64(), gen.Int64(), gen.Int64(),
	))

	properties.Property("a plus its negation is zero", prop.ForAll(
		func(a int64) bool {
			x := asDecimal(a)
			nx, err1 := Neg(x)
			sum, err2 := Add(x, nx)
			z, err3 := IsZero(sum)
			return err1 == nil && err2 == nil && err3 == nil && z
		},
		gen.Int64(),
	))

	properties.Property("sum matches big.Int reference", prop.ForAll(
		func(a, b int64) bool {
			ref := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
			got, err := Add(asDecimal(a), asDecimal(b))
			if err != nil {
				return false
			}
			cmp, err := Compare(got, FromAtoms(ref, 2))
			return err == nil && cmp == 0
		},
		gen.Int64Range(-1<<62, 1<<62), gen.Int64Range(-1<<62, 1<<62),
	))

	properties.TestingRun(t)
}
