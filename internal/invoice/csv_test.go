package invoice

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("MarshalCSV", func() {
	var (
		items  []LineItem
		output string
	)

	JustBeforeEach(func() {
		output = string(MarshalCSV(items))
	})

	When("serializing a heading with rows", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "h1", IsHeading: true, Name: "Dosa Items"},
				{ID: "r1", Name: "Plain Dosa", Quantity: 2, Unit: "pcs", Rate: 80},
				{ID: "r2", Name: "Masala Dosa", Quantity: 1, Unit: "pcs", Rate: 100},
			}
		})

		It("should start with the UTF-8 byte order mark", func() {
			Expect(output).To(HavePrefix("\uFEFF"))
			Expect([]byte(output)[:3]).To(Equal([]byte{0xEF, 0xBB, 0xBF}))
		})

		It("should emit the uppercased heading, header, and numbered rows", func() {
			Expect(output).To(Equal("\uFEFF" + strings.Join([]string{
				"DOSA ITEMS",
				"S No.,Food Item,Quantity,Unit,Rate,Total",
				"1,Plain Dosa,2,pcs,80,160.00",
				"2,Masala Dosa,1,pcs,100,100.00",
			}, "\n")))
		})
	})

	When("rows precede the first heading", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "r1", Name: "Filter Coffee", Quantity: 3, Unit: "cup", Rate: 40},
				{ID: "h1", IsHeading: true, Name: "Dosa Items"},
				{ID: "r2", Name: "Plain Dosa", Quantity: 2, Unit: "pcs", Rate: 80},
			}
		})

		It("should emit the leading section without a heading line, then a spaced heading block", func() {
			Expect(output).To(Equal("\uFEFF" + strings.Join([]string{
				"S No.,Food Item,Quantity,Unit,Rate,Total",
				"1,Filter Coffee,3,cup,40,120.00",
				"",
				"DOSA ITEMS",
				"S No.,Food Item,Quantity,Unit,Rate,Total",
				"1,Plain Dosa,2,pcs,80,160.00",
			}, "\n")))
		})

		It("should restart numbering in each section", func() {
			Expect(strings.Count(output, "\n1,")).To(Equal(2))
		})
	})

	When("a section contains placeholder rows", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "r1", Name: "Plain Dosa", Quantity: 2, Unit: "pcs", Rate: 80},
				{ID: "r2", Quantity: 0},
				{ID: "r3", Name: "Masala Dosa", Quantity: 1, Unit: "pcs", Rate: 100},
			}
		})

		It("should skip placeholders without disturbing the numbering", func() {
			Expect(output).To(ContainSubstring("1,Plain Dosa"))
			Expect(output).To(ContainSubstring("2,Masala Dosa"))
			Expect(output).NotTo(ContainSubstring("3,"))
		})
	})

	When("a heading has no rows", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "h1", IsHeading: true, Name: "Dosa Items"},
				{ID: "h2", IsHeading: true, Name: "Beverages"},
				{ID: "r1", Name: "Filter Coffee", Quantity: 3, Unit: "cup", Rate: 40},
			}
		})

		It("should still emit the bare heading block", func() {
			Expect(output).To(Equal("\uFEFF" + strings.Join([]string{
				"DOSA ITEMS",
				"S No.,Food Item,Quantity,Unit,Rate,Total",
				"",
				"BEVERAGES",
				"S No.,Food Item,Quantity,Unit,Rate,Total",
				"1,Filter Coffee,3,cup,40,120.00",
			}, "\n")))
		})
	})

	When("fields contain commas and quotes", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "r1", Name: "a,b", Quantity: 1, Unit: "", Rate: 5},
				{ID: "r2", Name: `"a,b"`, Quantity: 1, Unit: "", Rate: 5},
				{ID: "r3", Name: `5" plate`, Quantity: 1, Unit: "", Rate: 5},
			}
		})

		It("should quote fields containing commas", func() {
			Expect(output).To(ContainSubstring(`1,"a,b",1,,5,5.00`))
		})

		It("should double embedded quotes and wrap the field", func() {
			Expect(output).To(ContainSubstring(`2,"""a,b""",1,,5,5.00`))
			Expect(output).To(ContainSubstring(`3,"5"" plate",1,,5,5.00`))
		})
	})

	When("a row total is zero", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "r1", Name: "Complimentary Chutney", Quantity: 1, Unit: "cup", Rate: 0},
			}
		})

		It("should leave the total field blank", func() {
			Expect(output).To(HaveSuffix("1,Complimentary Chutney,1,cup,0,"))
		})
	})

	When("the only item is a blank placeholder row", func() {
		BeforeEach(func() {
			items = []LineItem{{ID: "r1", Quantity: 0}}
		})

		It("should produce just the column header", func() {
			Expect(output).To(Equal("\uFEFFS No.,Food Item,Quantity,Unit,Rate,Total"))
		})
	})

	When("serializing the same items twice", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "h1", IsHeading: true, Name: "Dosa Items"},
				{ID: "r1", Name: "Plain Dosa", Quantity: 2, Unit: "pcs", Rate: 80},
			}
		})

		It("should yield byte-identical output", func() {
			Expect(MarshalCSV(items)).To(Equal(MarshalCSV(items)))
		})
	})

	When("quantities are fractional", func() {
		BeforeEach(func() {
			items = []LineItem{
				{ID: "r1", Name: "Ghee", Quantity: 0.5, Unit: "kg", Rate: 600},
			}
		})

		It("should render numeric fields without trailing zeros", func() {
			Expect(output).To(ContainSubstring("1,Ghee,0.5,kg,600,300.00"))
		})
	})
})
