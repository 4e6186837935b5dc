package keywords

import "strings"

// dictionary holds the fixed industry and market tables. It is built once
// by Initialize and only read afterwards.
type dictionary struct {
	cannabisProducts  []string
	cannabisBrands    []string
	cannabisMaterials []string

	thaiProducts  []string
	thaiLocations []string
	thaiBusiness  []string
}

func newDictionary() *dictionary {
	return &dictionary{
		cannabisProducts: []string{
			"glass bong", "water pipe", "rolling papers", "herb grinder", "vaporizer",
			"smoking accessories", "glass pipe", "bubbler", "dab rig", "one hitter",
		},
		cannabisBrands: []string{
			"RAW papers", "OCB", "Molino Glass", "ROOR", "Storz Bickel",
			"Volcano", "Pax", "Santa Cruz Shredder", "Space Case",
		},
		cannabisMaterials: []string{
			"borosilicate glass", "titanium", "ceramic", "stainless steel",
			"bamboo", "hemp paper", "rice paper", "wood",
		},
		thaiProducts: []string{
			"บ้อง", "ไปป์น้ำ", "กระดาษม้วน", "เครื่องบด", "เครื่องระเหย",
			"อุปกรณ์สูบ", "ไปป์แก้ว", "บับเบลอร์", "แด็บริก",
		},
		thaiLocations: []string{
			"กรุงเทพ", "เชียงใหม่", "ภูเก็ต", "พัทยา", "ขอนแก่น",
			"อุดรธานี", "นครราชสีมา", "หาดใหญ่",
		},
		thaiBusiness: []string{
			"ขายส่ง", "ขายปลีก", "ร้านค้า", "ออนไลน์", "จัดส่ง",
			"คุณภาพ", "ราคาถูก", "ของแท้", "นำเข้า",
		},
	}
}

// addCannabis adds matching products with their variants and every
// brand and material combination for each seed
func (d *dictionary) addCannabis(set *orderedSet, seeds []string) {
	for _, seed := range seeds {
		lowerSeed := strings.ToLower(seed)
		for _, product := range d.cannabisProducts {
			lowerProduct := strings.ToLower(product)
			if !strings.Contains(lowerProduct, lowerSeed) && !strings.Contains(lowerSeed, lowerProduct) {
				continue
			}
			set.Add(product)
			set.Add(product + " wholesale")
			set.Add(product + " online")
			set.Add("best " + product)
			set.Add("cheap " + product)
		}

		for _, brand := range d.cannabisBrands {
			set.Add(brand + " " + seed)
		}
		for _, material := range d.cannabisMaterials {
			set.Add(material + " " + seed)
		}
	}
}

// addThai adds every Thai product with its location and business-term combinations
func (d *dictionary) addThai(set *orderedSet) {
	for _, product := range d.thaiProducts {
		set.Add(product)
		for _, location := range d.thaiLocations {
			set.Add(product + " " + location)
		}
		for _, business := range d.thaiBusiness {
			set.Add(product + " " + business)
		}
	}
}

// orderedSet keeps insertion order and drops exact duplicates
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(capacity int) *orderedSet {
	return &orderedSet{
		seen:  make(map[string]struct{}, capacity),
		items: make([]string, 0, capacity),
	}
}

func (s *orderedSet) Add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) Items() []string {
	return s.items
}
