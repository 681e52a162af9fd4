package extract

import (
	"io"
	"log/slog"
	"testing"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default: %v", err)
	}
	return NewDispatcher(reg, quietLogger())
}

func doc(name string, text string, tables ...[][]string) *document.Document {
	d := &document.Document{Path: "/reports/" + name, Text: text}
	for _, rows := range tables {
		d.Tables = append(d.Tables, document.NewTable(rows))
	}
	return d
}

func filler(text string) [][]string {
	return [][]string{{text}, {"无"}}
}

const shezhiText = "估价对象约建成于2008年建成。\n价值时点：2024年3月5日。\n估价目的：为人民法院确定财产处置参考价提供参考依据。\n楼层修正 ×102%＝"

// shezhiDoc follows the default table order of a court-enforcement report.
// Case B carries an unreadable transaction price.
func shezhiDoc() *document.Document {
	return doc("某项目涉执报告.docx", shezhiText,
		[][]string{
			{"估价对象", "建筑面积(㎡)", "单价(元/㎡)", "总价(万元)"},
			{"江苏省南京市鼓楼区湖南路街道幸福路1号3幢501室", "120.5", "15000", "180.75万元"},
		},
		filler("目录"),
		[][]string{
			{"不动产权证号", "权利人", "共有情况", "坐落", "结构", "所在层/总层数", "建筑面积", "规划用途"},
			{"苏(2021)某市不动产权第0012345号", "张三", "单独所有", "幸福路1号3幢501室", "钢混", "5/18", "120.5", "住宅"},
			{"地号", "土地使用权人", "使用权类型", "地类(用途)", "使用权面积", "终止日期", "", ""},
			{"320000001", "张三", "出让", "城镇住宅用地", "30.2", "2070/12/31", "", ""},
		},
		filler("估价结果"),
		filler("估价方法"),
		[][]string{
			{"项目", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"地址", "", "幸福路1号", "和平路2号", "建设路3号", "人民路4号"},
			{"位置", "", "临街", "内街", "临街", "内街"},
			{"案例来源", "", "", "中介", "中介", "网络"},
			{"用途", "", "住宅", "住宅", "住宅", "住宅"},
			{"交易价格", "元/㎡", "", "15200", "abc", "14800"},
			{"建筑面积", "㎡", "120.5", "98.6", "110", "130.2"},
			{"交易日期", "", "", "2024年3月", "2024年4月", "2024年5月"},
		},
		[][]string{
			{"比较因素", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"区位状况", "区域位置", "城区中心", "城区中心", "城区边缘", "城区中心"},
			{"区位状况", "朝向", "南北", "南", "南北", "东西"},
			{"区位状况", "交通条件", "便利", "便利", "一般", "便利"},
			{"实物状况", "装饰装修", "精装", "简装", "精装", "毛坯"},
			{"实物状况", "建筑结构", "钢混", "钢混", "砖混", "钢混"},
			{"权益状况", "规划条件", "一致", "一致", "一致", "一致"},
		},
		[][]string{
			{"因素等级", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"区位状况", "区域位置", "优", "优", "较优", "优"},
			{"区位状况", "朝向", "一般", "一般", "一般", "较劣"},
			{"实物状况", "装饰装修", "较优", "一般", "较优", "劣"},
		},
		[][]string{
			{"因素指数", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"区位状况", "区域位置", "100", "100", "98", "100"},
			{"区位状况", "朝向", "100", "100", "100", "97"},
			{"实物状况", "装饰装修", "100", "102", "100", "95"},
		},
		[][]string{
			{"因素比率", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"区位状况", "区域位置", "1", "1", "102%", "1"},
			{"区位状况", "朝向", "1", "1", "1", "103/100"},
			{"实物状况", "装饰装修", "1", "0.98", "1", "1.05"},
		},
		[][]string{
			{"项目", "可比实例A", "可比实例B", "可比实例C"},
			{"交易价格", "15200", "15000", "14800"},
			{"交易情况修正", "100/100", "100/100", "100/100"},
			{"市场状况修正", "1.01", "1.02", "1.00"},
			{"区位状况修正", "1", "0.98", "1.03"},
			{"实物状况修正", "0.98", "1", "1.05"},
			{"权益状况修正", "1", "1", "1"},
			{"修正后单价", "14900", "14994", "16000"},
		},
	)
}

// zujinDoc has only the summary, basic and correction tables; the factor
// roles fall back to offsets from the basic table.
func zujinDoc() *document.Document {
	return doc("某项目租金报告.docx", "",
		[][]string{
			{"坐落", "楼层", "建筑面积(㎡)", "年租金(元)", "租金单价(元/㎡·年)"},
			{"浙江省杭州市西湖区文新街道文三路8号", "3", "200", "144000", "720"},
		},
		[][]string{
			{"项目", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"地址", "", "文三路8号", "文三路9号", "文三路10号", "文三路11号"},
			{"财产范围", "", "房屋", "房屋", "房屋", "房屋"},
			{"付款方式", "", "年付", "年付", "半年付", "季付"},
			{"租赁价格", "", "", "700", "730", "760"},
			{"交易日期", "", "", "2024年1月", "2024年2月", "2024年3月"},
		},
		[][]string{
			{"项目", "可比实例A", "可比实例B", "可比实例C"},
			{"交易情况", "100/100", "100/100", "100/100"},
			{"市场状况", "1.00", "1.01", "1.00"},
			{"调整后单价", "702", "725", "741"},
		},
	)
}

// biaozhunfangDoc carries four cases and the P1..P4 chain.
func biaozhunfangDoc() *document.Document {
	return doc("某小区标准房报告.docx", "估价目的：为人民法院确定财产处置参考价提供参考依据。",
		[][]string{
			{"项目", "", "估价对象"},
			{"评估总价", "万元", "205.85"},
			{"评估单价", "元/㎡", "17154"},
		},
		[][]string{
			{"项目", "说明", "", "估价对象", "可比实例A", "可比实例B", "可比实例C", "可比实例D"},
			{"案例来源", "", "", "", "中介", "中介", "网络", "网络"},
			{"坐落", "", "", "幸福路1号", "和平路2号", "建设路3号", "人民路4号", "中山路5号"},
			{"建筑面积", "", "", "120.5", "98.6", "110", "130.2", "88"},
			{"层次", "", "", "5/18", "3/6", "12/18", "1-2/2", "7/11"},
			{"朝向", "", "", "南北", "南", "南北", "东西", "南"},
			{"交易单价", "", "", "", "16800", "17200", "16500", "17500"},
		},
		[][]string{
			{"内容", "标准房", "可比实例A", "可比实例B", "可比实例C", "可比实例D"},
			{"结构", "1", "1", "0.98", "1", "1.02"},
			{"层次", "1", "1.01", "1", "0.99", "1"},
			{"朝向", "1", "1", "1", "102%", "1"},
		},
		[][]string{
			{"项目", "可比实例A", "可比实例B", "可比实例C", "可比实例D"},
			{"交易情况修正P1", "100/100", "100/100", "100/100", "100/100"},
			{"市场状况修正P2", "100/98", "100/99", "100/100", "100/101"},
			{"区位状况P3", "108/103", "100/100", "100/102", "100/100"},
			{"实物状况P4", "1", "1.02", "1", "0.99"},
			{"P1×P2×P3×P4", "1.0699", "1.0303", "0.9804", "0.9901"},
			{"比准价格", "17975", "17722", "16177", "17327"},
			{"装修价格", "200", "200", "0", "150"},
		},
	)
}

// xianzhiDoc is a batch report with two subjects, two case groups and a
// floor table. The second subject has an unreadable total.
func xianzhiDoc() *document.Document {
	group := func(a, b, c string) [][]string {
		return [][]string{
			{"项目", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
			{"坐落", "", "", "文三路5号", "文三路6号", "文三路7号"},
			{"成交基价", "元/㎡", "", a, b, c},
		}
	}
	return doc("某批量现状评估.docx", "",
		[][]string{
			{"序号", "坐落", "建筑面积(㎡)", "评估总价(万元)"},
			{"1", "浙江省杭州市西湖区文新街道文三路1号", "100", "200"},
			{"2", "浙江省杭州市西湖区文新街道文三路2号", "80", "abc"},
			{"合计", "", "180", "200"},
		},
		group("19000", "19500", "20500"),
		group("21000", "21500", "22500"),
		[][]string{
			{"坐落", "基准价", "楼层系数"},
			{"文三路1号", "20000", "98%"},
			{"文三路9号", "20000", "1.02"},
		},
	)
}

func float(t *testing.T, name string, v entity.LocatedFloat) float64 {
	t.Helper()
	f, ok := v.Get()
	if !ok {
		t.Fatalf("%s is unset", name)
	}
	return f
}

func text(t *testing.T, name string, v entity.LocatedString) string {
	t.Helper()
	s, ok := v.Get()
	if !ok {
		t.Fatalf("%s is unset", name)
	}
	return s
}
